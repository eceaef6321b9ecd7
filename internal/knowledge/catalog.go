package knowledge

import (
	"fmt"
	"strings"
)

// Catalog is an ordered, immutable set of topics. Order matters: keyword
// selection returns the first match, so the catalogue's order is part of its
// contract.
type Catalog struct {
	topics []Topic
	byID   map[string]*Topic
}

// NewCatalog builds a catalog from an ordered topic list. Every topic must
// have a non-empty, unique ID and a non-empty name.
func NewCatalog(topics []Topic) (*Catalog, error) {
	c := &Catalog{
		topics: make([]Topic, len(topics)),
		byID:   make(map[string]*Topic, len(topics)),
	}
	copy(c.topics, topics)
	for i := range c.topics {
		t := &c.topics[i]
		if t.ID == "" {
			return nil, fmt.Errorf("knowledge: topic %d has an empty id", i)
		}
		if t.Name == "" {
			return nil, fmt.Errorf("knowledge: topic %q has an empty name", t.ID)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("knowledge: duplicate topic id %q", t.ID)
		}
		c.byID[t.ID] = t
	}
	return c, nil
}

// BuiltinCatalog returns the compiled-in landmark catalogue used when no
// topics file is configured.
func BuiltinCatalog() *Catalog {
	c, err := NewCatalog(builtinTopics)
	if err != nil {
		// The builtin data is validated by tests; reaching this means the
		// binary itself is broken.
		panic(err)
	}
	return c
}

// Topics returns the catalogue's topics in order. The returned slice is a
// copy; callers may retain it.
func (c *Catalog) Topics() []Topic {
	out := make([]Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

// Names returns every topic's display name in catalogue order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.topics))
	for i, t := range c.topics {
		names[i] = t.Name
	}
	return names
}

// Len reports the number of topics in the catalogue.
func (c *Catalog) Len() int {
	return len(c.topics)
}

// Lookup returns the topic with the given ID, or nil if unknown.
func (c *Catalog) Lookup(id string) *Topic {
	return c.byID[id]
}

// fallbackMessage asks the user to name a place the catalogue knows.
const fallbackMessage = "Please ask about a specific location for detailed information."

// Select resolves generation context for a query. Resolution order:
//
//  1. explicitTopicID, when it names a known topic;
//  2. the first topic whose ID or lower-cased display name appears as a
//     substring of the lower-cased query;
//  3. a fallback context listing every known topic.
//
// Select is total: it always returns a usable Context and never fails.
func (c *Catalog) Select(query, explicitTopicID string) Context {
	if t := c.byID[explicitTopicID]; t != nil {
		return Context{Topic: t}
	}

	lowered := strings.ToLower(query)
	for i := range c.topics {
		t := &c.topics[i]
		if strings.Contains(lowered, t.ID) || strings.Contains(lowered, strings.ToLower(t.Name)) {
			return Context{Topic: t}
		}
	}

	return Context{
		AvailableLocations: c.Names(),
		Message:            fallbackMessage,
	}
}

// builtinTopics is the compiled-in landmark data. Slice order defines match
// precedence for keyword selection.
var builtinTopics = []Topic{
	{
		ID:                   "taj_mahal",
		Name:                 "Taj Mahal",
		Location:             "Agra, India",
		Description:          "The Taj Mahal is an ivory-white marble mausoleum on the right bank of the river Yamuna in Agra, Uttar Pradesh, India.",
		History:              "It was commissioned in 1632 by the Mughal emperor Shah Jahan to house the tomb of his favorite wife, Mumtaz Mahal. The tomb is the centerpiece of a 17-hectare complex, which includes a mosque and a guest house, and is set in formal gardens bounded on three sides by a crenellated wall.",
		CulturalSignificance: "The Taj Mahal was designated as a UNESCO World Heritage Site in 1983 for being 'the jewel of Muslim art in India and one of the universally admired masterpieces of the world's heritage'.",
		VisitingHours:        "Sunrise to sunset, closed on Fridays",
		Tips:                 "Visit early in the morning to avoid crowds. Wear comfortable shoes as you'll be walking on marble.",
	},
	{
		ID:                   "eiffel_tower",
		Name:                 "Eiffel Tower",
		Location:             "Paris, France",
		Description:          "The Eiffel Tower is a wrought-iron lattice tower on the Champ de Mars in Paris, France.",
		History:              "It is named after the engineer Gustave Eiffel, whose company designed and built the tower from 1887 to 1889 as the entrance to the 1889 World's Fair.",
		CulturalSignificance: "It has become a global cultural icon of France and one of the most recognizable structures in the world.",
		VisitingHours:        "9:00 AM to 12:45 AM (last elevator at 11:00 PM)",
		Tips:                 "Book tickets online to avoid long queues. Visit at night to see the tower illuminated.",
	},
	{
		ID:                   "machu_picchu",
		Name:                 "Machu Picchu",
		Location:             "Cusco Region, Peru",
		Description:          "Machu Picchu is an Incan citadel set high in the Andes Mountains in Peru, above the Urubamba River valley.",
		History:              "Built in the 15th century and later abandoned, it's renowned for its sophisticated dry-stone walls that fuse huge blocks without the use of mortar, intriguing buildings that play on astronomical alignments, and panoramic views.",
		CulturalSignificance: "It was declared a Peruvian Historical Sanctuary in 1981 and a UNESCO World Heritage Site in 1983.",
		VisitingHours:        "6:00 AM to 5:30 PM",
		Tips:                 "Acclimatize to the altitude before visiting. Bring water, sunscreen, and rain gear as weather can change quickly.",
	},
	{
		ID:                   "great_wall",
		Name:                 "Great Wall of China",
		Location:             "Northern China",
		Description:          "The Great Wall of China is a series of fortifications built along the northern borders of China to protect against invasions.",
		History:              "Several walls were built from as early as the 7th century BC, with selective stretches later joined by Qin Shi Huang (220-206 BC), the first Emperor of China. Later on, many successive dynasties built and maintained multiple stretches of border walls.",
		CulturalSignificance: "The Great Wall is a symbol of China's ancient civilization and is the longest wall in the world.",
		VisitingHours:        "Varies by section, typically 7:30 AM to 5:30 PM",
		Tips:                 "The Badaling and Mutianyu sections are the most restored and tourist-friendly. Wear comfortable shoes and bring water.",
	},
	{
		ID:                   "colosseum",
		Name:                 "Colosseum",
		Location:             "Rome, Italy",
		Description:          "The Colosseum is an oval amphitheatre in the centre of the city of Rome, Italy.",
		History:              "Built of travertine limestone, tuff, and brick-faced concrete, it was the largest amphitheatre ever built at the time and held 50,000 to 80,000 spectators. Construction began under the emperor Vespasian in AD 72 and was completed in AD 80 under his successor and heir, Titus.",
		CulturalSignificance: "The Colosseum is an iconic symbol of Imperial Rome and is listed as one of the New 7 Wonders of the World.",
		VisitingHours:        "8:30 AM to 7:00 PM (varies by season)",
		Tips:                 "Buy tickets in advance to skip the long lines. Consider a guided tour to learn about the rich history.",
	},
}
