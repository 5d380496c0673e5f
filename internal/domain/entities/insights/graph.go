package insights

type NodeKind string

const (
	NodeKindEmotion NodeKind = "emotion"
	NodeKindCause   NodeKind = "cause"
)

type EmotionGraphNode struct {
	ID               string   `json:"id"`
	Kind             NodeKind `json:"type"`
	Label            string   `json:"label"`
	Description      string   `json:"description,omitempty"`
	Color            string   `json:"color,omitempty"`
	Size             float64  `json:"size"`
	Weight           int      `json:"weight"`
	AverageIntensity float64  `json:"averageIntensity"`
}

type EmotionGraphEdge struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Width  float64 `json:"width"`
	Count  int     `json:"count"`
}

// CauseSummary ranks a cause by how often it triggered an emotion.
type CauseSummary struct {
	NodeID   string   `json:"nodeId"`
	Cause    string   `json:"cause"`
	Count    int      `json:"count"`
	Emotions []string `json:"emotions"`
}

// EmotionCluster is a group of emotion nodes that share at least two causes
// with the cluster's seed node.
type EmotionCluster struct {
	ID           string   `json:"id"`
	Emotions     []string `json:"emotions"`
	SharedCauses []string `json:"sharedCauses"`
}

type GraphStatistics struct {
	TotalNodes           int                `json:"totalNodes"`
	TotalEdges           int                `json:"totalEdges"`
	EmotionNodes         int                `json:"emotionNodes"`
	CauseNodes           int                `json:"causeNodes"`
	AverageConnections   float64            `json:"averageConnections"`
	MaxNodeWeight        int                `json:"maxNodeWeight"`
	StrongestConnections []EmotionGraphEdge `json:"strongestConnections"`
	DominantCauses       []CauseSummary     `json:"dominantCauses"`
	Clusters             []EmotionCluster   `json:"clusters"`
}

type EmotionGraph struct {
	Nodes      []EmotionGraphNode `json:"nodes"`
	Edges      []EmotionGraphEdge `json:"edges"`
	Statistics GraphStatistics    `json:"statistics"`
}
