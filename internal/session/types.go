// Package session implements the watchlist aggregation engine: merging
// multiple users' watchlists, fanning out per-title availability lookups,
// and maintaining a ranked, filterable view as results stream in.
package session

// Title is one watchlist entry as reported by the watchlist provider.
// Identity is the provider-assigned ID.
type Title struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// OwnedTitle is a Title annotated with the usernames whose watchlist
// contained it. Owners is never empty and never shrinks.
type OwnedTitle struct {
	Title
	Owners []string `json:"owners"`
}

// OwnedBy reports whether the given username is among the title's owners.
func (t OwnedTitle) OwnedBy(username string) bool {
	for _, o := range t.Owners {
		if o == username {
			return true
		}
	}
	return false
}

// OptionKind classifies how a title can be watched through a service.
type OptionKind string

const (
	KindSubscription OptionKind = "subscription"
	KindBuy          OptionKind = "buy"
	KindRent         OptionKind = "rent"
	KindAddon        OptionKind = "addon"
)

// Option is one concrete way to watch a title on one streaming service.
type Option struct {
	ServiceID   string     `json:"service_id"`
	ServiceName string     `json:"service_name,omitempty"`
	Kind        OptionKind `json:"kind"`
	Link        string     `json:"link"`
	Quality     string     `json:"quality,omitempty"`
	Price       string     `json:"price,omitempty"`
	Audios      []string   `json:"audios,omitempty"`
	Subtitles   []string   `json:"subtitles,omitempty"`
	ExpiresSoon bool       `json:"expires_soon,omitempty"`
	ExpiresOn   int64      `json:"expires_on,omitempty"`
}

// TitleStatus is the lifecycle tag of a title within one query generation.
type TitleStatus string

const (
	StatusIdle    TitleStatus = "idle"
	StatusLoading TitleStatus = "loading"
	StatusSuccess TitleStatus = "success"
	StatusError   TitleStatus = "error"
)

// TitleState tracks the availability lookup for one title. Options is only
// populated for StatusSuccess and groups options by service ID, preserving
// provider order within each group. Err is only set for StatusError.
type TitleState struct {
	Status     TitleStatus         `json:"status"`
	Generation uint64              `json:"generation"`
	Options    map[string][]Option `json:"options,omitempty"`
	Err        string              `json:"error,omitempty"`
}

// FilterSelection is the user's current view filter. Changing it never
// mutates stored titles; it only drives ranking and intersection.
type FilterSelection struct {
	Services         []string `json:"services"`
	SubscriptionOnly bool     `json:"subscription_only"`
	Intersect        bool     `json:"intersect"`
}

// HasService reports whether the service is part of the selection. An
// empty selection selects every service.
func (f FilterSelection) HasService(id string) bool {
	if len(f.Services) == 0 {
		return true
	}
	for _, s := range f.Services {
		if s == id {
			return true
		}
	}
	return false
}

// GroupOptions groups a provider-ordered option list by service ID. Order
// within each group follows the input order; there is no cross-service
// mixing.
func GroupOptions(options []Option) map[string][]Option {
	grouped := make(map[string][]Option, len(options))
	for _, o := range options {
		grouped[o.ServiceID] = append(grouped[o.ServiceID], o)
	}
	return grouped
}
