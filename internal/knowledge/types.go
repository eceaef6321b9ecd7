// Package knowledge holds the fixed travel-topic catalogue and the keyword
// selector that picks generation context for a query.
//
// A Catalog is an ordered, immutable set of [Topic] records. Selection is a
// pure function: an explicit topic ID wins, otherwise the first topic whose
// ID or display name appears in the lower-cased query is chosen, otherwise a
// fallback context listing every known topic is returned. There is no
// ranking and no error path.
package knowledge

import "encoding/json"

// Topic is one knowledge-base entry describing a named place or landmark,
// used verbatim as generation context.
type Topic struct {
	// ID is the stable lookup key (e.g., "taj_mahal").
	ID string `yaml:"id" json:"-"`

	// Name is the display name (e.g., "Taj Mahal").
	Name string `yaml:"name" json:"name"`

	// Location is the human-readable place (e.g., "Agra, India").
	Location string `yaml:"location" json:"location"`

	// Description is a one-paragraph summary.
	Description string `yaml:"description" json:"description"`

	// History covers the topic's historical background.
	History string `yaml:"history" json:"history,omitempty"`

	// CulturalSignificance covers heritage status and cultural context.
	CulturalSignificance string `yaml:"cultural_significance" json:"cultural_significance,omitempty"`

	// VisitingHours lists opening times.
	VisitingHours string `yaml:"visiting_hours" json:"visiting_hours,omitempty"`

	// Tips holds practical visitor advice.
	Tips string `yaml:"tips" json:"tips,omitempty"`
}

// Context is the knowledge context handed to the generation stage: either a
// single matched topic, or the fallback listing when nothing matched.
//
// Exactly one of Topic or the fallback pair is populated. The JSON encoding
// mirrors that split so the prompt carries either the record or the listing.
type Context struct {
	// Topic is the matched record, nil when no topic matched.
	Topic *Topic `json:"-"`

	// AvailableLocations lists every known display name. Set only on the
	// fallback path.
	AvailableLocations []string `json:"available_locations,omitempty"`

	// Message is the clarifying prompt asking the user to narrow the query.
	// Set only on the fallback path.
	Message string `json:"message,omitempty"`
}

// MarshalJSON encodes the matched topic record when present, and the
// fallback listing otherwise, so the generation prompt always receives one
// flat JSON object.
func (c Context) MarshalJSON() ([]byte, error) {
	if c.Topic != nil {
		return json.Marshal(struct {
			Name                 string `json:"name"`
			Location             string `json:"location"`
			Description          string `json:"description"`
			History              string `json:"history,omitempty"`
			CulturalSignificance string `json:"cultural_significance,omitempty"`
			VisitingHours        string `json:"visiting_hours,omitempty"`
			Tips                 string `json:"tips,omitempty"`
		}{
			Name:                 c.Topic.Name,
			Location:             c.Topic.Location,
			Description:          c.Topic.Description,
			History:              c.Topic.History,
			CulturalSignificance: c.Topic.CulturalSignificance,
			VisitingHours:        c.Topic.VisitingHours,
			Tips:                 c.Topic.Tips,
		})
	}
	return json.Marshal(struct {
		AvailableLocations []string `json:"available_locations"`
		Message            string   `json:"message"`
	}{
		AvailableLocations: c.AvailableLocations,
		Message:            c.Message,
	})
}

// Matched reports whether the context carries a concrete topic record.
func (c Context) Matched() bool {
	return c.Topic != nil
}

// TopicName returns the matched topic's display name, or "" on the fallback
// path. Used to populate the response's location_context field.
func (c Context) TopicName() string {
	if c.Topic == nil {
		return ""
	}
	return c.Topic.Name
}
