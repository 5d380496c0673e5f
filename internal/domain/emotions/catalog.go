package emotions

import "strings"

// Category groups emotions by valence. Active emotions count toward the
// positivity ratio, passive ones toward its complement.
type Category string

const (
	CategoryActive  Category = "active"
	CategoryPassive Category = "passive"
	CategoryNeutral Category = "neutral"
)

// UnknownEmotionID is the catalog entry used for labels that are not in the
// catalog. The raw label is still used as the aggregation key.
const UnknownEmotionID = "unknown"

// Metadata is the display information for a canonical emotion id.
type Metadata struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Color    string   `json:"color"`
	Emoji    string   `json:"emoji"`
}

var catalog = map[string]Metadata{
	"happiness":   {ID: "happiness", Label: "Happiness", Category: CategoryActive, Color: "#FFD166", Emoji: "😊"},
	"joy":         {ID: "joy", Label: "Joy", Category: CategoryActive, Color: "#FFB703", Emoji: "😄"},
	"excitement":  {ID: "excitement", Label: "Excitement", Category: CategoryActive, Color: "#FB8500", Emoji: "🤩"},
	"gratitude":   {ID: "gratitude", Label: "Gratitude", Category: CategoryActive, Color: "#06D6A0", Emoji: "🙏"},
	"love":        {ID: "love", Label: "Love", Category: CategoryActive, Color: "#EF476F", Emoji: "❤️"},
	"pride":       {ID: "pride", Label: "Pride", Category: CategoryActive, Color: "#8338EC", Emoji: "😌"},
	"hope":        {ID: "hope", Label: "Hope", Category: CategoryActive, Color: "#90BE6D", Emoji: "🌱"},
	"contentment": {ID: "contentment", Label: "Contentment", Category: CategoryActive, Color: "#43AA8B", Emoji: "☺️"},
	"sadness":     {ID: "sadness", Label: "Sadness", Category: CategoryPassive, Color: "#4361EE", Emoji: "😢"},
	"anxiety":     {ID: "anxiety", Label: "Anxiety", Category: CategoryPassive, Color: "#7209B7", Emoji: "😰"},
	"anger":       {ID: "anger", Label: "Anger", Category: CategoryPassive, Color: "#D62828", Emoji: "😠"},
	"fear":        {ID: "fear", Label: "Fear", Category: CategoryPassive, Color: "#3A0CA3", Emoji: "😨"},
	"frustration": {ID: "frustration", Label: "Frustration", Category: CategoryPassive, Color: "#E76F51", Emoji: "😤"},
	"loneliness":  {ID: "loneliness", Label: "Loneliness", Category: CategoryPassive, Color: "#577590", Emoji: "🥺"},
	"stress":      {ID: "stress", Label: "Stress", Category: CategoryPassive, Color: "#9D0208", Emoji: "😫"},
	"guilt":       {ID: "guilt", Label: "Guilt", Category: CategoryPassive, Color: "#6D597A", Emoji: "😔"},
	"disgust":     {ID: "disgust", Label: "Disgust", Category: CategoryPassive, Color: "#606C38", Emoji: "🤢"},
	"calm":        {ID: "calm", Label: "Calm", Category: CategoryNeutral, Color: "#8ECAE6", Emoji: "😐"},
	"surprise":    {ID: "surprise", Label: "Surprise", Category: CategoryNeutral, Color: "#F4A261", Emoji: "😮"},
	"confusion":   {ID: "confusion", Label: "Confusion", Category: CategoryNeutral, Color: "#ADB5BD", Emoji: "😕"},
	"boredom":     {ID: "boredom", Label: "Boredom", Category: CategoryNeutral, Color: "#CED4DA", Emoji: "🥱"},
	"nostalgia":   {ID: "nostalgia", Label: "Nostalgia", Category: CategoryNeutral, Color: "#B5838D", Emoji: "🕰️"},
}

var unknownMetadata = Metadata{ID: UnknownEmotionID, Label: "Unknown", Category: CategoryNeutral, Color: "#9E9E9E", Emoji: "❔"}

// aliases maps common synonyms and localized labels onto catalog ids.
var aliases = map[string]string{
	"happy":      "happiness",
	"joyful":     "joy",
	"excited":    "excitement",
	"grateful":   "gratitude",
	"thankful":   "gratitude",
	"proud":      "pride",
	"hopeful":    "hope",
	"content":    "contentment",
	"satisfied":  "contentment",
	"sad":        "sadness",
	"anxious":    "anxiety",
	"worry":      "anxiety",
	"worried":    "anxiety",
	"nervous":    "anxiety",
	"angry":      "anger",
	"scared":     "fear",
	"afraid":     "fear",
	"frustrated": "frustration",
	"lonely":     "loneliness",
	"stressed":   "stress",
	"guilty":     "guilt",
	"disgusted":  "disgust",
	"peaceful":   "calm",
	"relaxed":    "calm",
	"surprised":  "surprise",
	"confused":   "confusion",
	"bored":      "boredom",

	"开心": "happiness",
	"快乐": "joy",
	"兴奋": "excitement",
	"感激": "gratitude",
	"悲伤": "sadness",
	"难过": "sadness",
	"焦虑": "anxiety",
	"愤怒": "anger",
	"恐惧": "fear",
	"沮丧": "frustration",
	"孤独": "loneliness",
	"压力": "stress",
	"平静": "calm",
	"惊讶": "surprise",
	"困惑": "confusion",
}

// CanonicalID lowercases and trims a raw label and resolves aliases. Labels
// that are not in the catalog are returned normalized but otherwise untouched.
func CanonicalID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := aliases[id]; ok {
		return alias
	}
	return id
}

// Lookup returns the metadata for a canonical id. The second return value is
// false when the id fell back to the unknown entry; in that case Label carries
// the id itself so the emotion stays distinguishable on screen.
func Lookup(id string) (Metadata, bool) {
	if meta, ok := catalog[id]; ok {
		return meta, true
	}
	meta := unknownMetadata
	if id != "" {
		meta.Label = id
	}
	return meta, false
}

// CategoryOf is shorthand for Lookup(id).Category.
func CategoryOf(id string) Category {
	meta, _ := Lookup(id)
	return meta.Category
}

// ColorOf is shorthand for Lookup(id).Color.
func ColorOf(id string) string {
	meta, _ := Lookup(id)
	return meta.Color
}

// CatalogSize is the number of canonical emotions the catalog knows about.
func CatalogSize() int {
	return len(catalog)
}
