package domain

import "strings"

// Slug is the normalized uppercase identifier for an app, action or trigger.
type Slug string

// NormalizeSlug uppercases a raw identifier value.
func NormalizeSlug(value string) Slug {
	return Slug(strings.ToUpper(strings.TrimSpace(value)))
}

func (s Slug) String() string {
	return string(s)
}

// EntityKind names the namespace a slug belongs to.
type EntityKind string

const (
	KindApp     EntityKind = "app"
	KindAction  EntityKind = "action"
	KindTrigger EntityKind = "trigger"
)

// CacheDir returns the kind-specific directory name inside the disk cache.
func (k EntityKind) CacheDir() string {
	switch k {
	case KindApp:
		return "apps"
	case KindAction:
		return "actions"
	case KindTrigger:
		return "triggers"
	default:
		return string(k)
	}
}

// Locality tags where an entity executes, decided once at resolution time.
type Locality string

const (
	LocalityLocal  Locality = "local"
	LocalityRemote Locality = "remote"
)

// AppRecord is the descriptive metadata for a resolved app slug.
type AppRecord struct {
	Slug    Slug   `json:"slug"`
	Name    string `json:"name"`
	IsLocal bool   `json:"is_local"`
}

// ActionRecord is the descriptive metadata for a resolved action slug.
type ActionRecord struct {
	Slug      Slug     `json:"slug"`
	Name      string   `json:"name"`
	App       string   `json:"app"`
	Tags      []string `json:"tags"`
	NoAuth    bool     `json:"no_auth"`
	IsLocal   bool     `json:"is_local"`
	IsRuntime bool     `json:"is_runtime"`
	Shell     bool     `json:"shell"`
}

// HasTag reports whether the action carries the given tag.
func (r ActionRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TriggerRecord is the descriptive metadata for a resolved trigger slug.
type TriggerRecord struct {
	Slug Slug   `json:"slug"`
	Name string `json:"name"`
	App  string `json:"app"`
}

// CloneActionRecord returns a deep copy so cached records never leak
// mutable state.
func CloneActionRecord(r ActionRecord) ActionRecord {
	out := r
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	return out
}

// ConnectedAccount describes an authenticated connection for an app,
// as reported by the remote API.
type ConnectedAccount struct {
	ID          string `json:"id"`
	AppUniqueID string `json:"appUniqueId"`
	Status      string `json:"status"`
}
