package services

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
)

const (
	emotionNodePrefix = "emotion_"
	causeNodePrefix   = "cause_"
	causeNodeColor    = "#B0BEC5"

	emotionNodeMinSize = 30.0
	emotionNodeMaxSize = 80.0
	causeNodeMinSize   = 25.0
	causeNodeMaxSize   = 60.0
	edgeMinWidth       = 1.0
	edgeMaxWidth       = 5.0

	graphTopN              = 5
	clusterMinSharedCauses = 2
)

type graphEmotion struct {
	id     string
	count  int
	total  float64
	causes []string // cause keys in first-seen order
	linked map[string]bool
}

type graphCause struct {
	key         string
	label       string
	description string
	count       int
	total       float64
	emotions    []string
	linked      map[string]bool
}

type graphPair struct {
	emotion string
	cause   string
	weight  float64
	count   int
}

// graphAccumulator is the first pass of graph construction. It only grows.
type graphAccumulator struct {
	emotions     map[string]*graphEmotion
	emotionOrder []string
	causes       map[string]*graphCause
	causeOrder   []string
	pairs        map[[2]string]*graphPair
	pairOrder    [][2]string
}

// BuildKnowledgeGraph links every emotion to the causes reported for it.
// Node and edge order follows first appearance in samples, so the same input
// always yields the same graph.
func BuildKnowledgeGraph(samples []emotions.Sample) insights.EmotionGraph {
	acc := &graphAccumulator{
		emotions: make(map[string]*graphEmotion),
		causes:   make(map[string]*graphCause),
		pairs:    make(map[[2]string]*graphPair),
	}
	for _, sample := range samples {
		for _, d := range sample.Detections {
			acc.addDetection(d)
		}
	}
	return acc.materialize()
}

func (acc *graphAccumulator) addDetection(d emotions.Detection) {
	e, exists := acc.emotions[d.Emotion]
	if !exists {
		e = &graphEmotion{id: d.Emotion, linked: make(map[string]bool)}
		acc.emotions[d.Emotion] = e
		acc.emotionOrder = append(acc.emotionOrder, d.Emotion)
	}
	e.count++
	e.total += d.Intensity

	for _, cause := range d.Causes {
		key := normalizeCause(cause.Cause)
		if key == "" {
			continue
		}
		c, exists := acc.causes[key]
		if !exists {
			c = &graphCause{key: key, label: strings.TrimSpace(cause.Cause), linked: make(map[string]bool)}
			acc.causes[key] = c
			acc.causeOrder = append(acc.causeOrder, key)
		}
		c.count++
		c.total += d.Intensity
		if c.description == "" {
			c.description = strings.TrimSpace(cause.Description)
		}

		if !e.linked[key] {
			e.linked[key] = true
			e.causes = append(e.causes, key)
		}
		if !c.linked[d.Emotion] {
			c.linked[d.Emotion] = true
			c.emotions = append(c.emotions, d.Emotion)
		}

		pairKey := [2]string{d.Emotion, key}
		p, exists := acc.pairs[pairKey]
		if !exists {
			p = &graphPair{emotion: d.Emotion, cause: key}
			acc.pairs[pairKey] = p
			acc.pairOrder = append(acc.pairOrder, pairKey)
		}
		p.weight += d.Intensity
		p.count++
	}
}

func (acc *graphAccumulator) materialize() insights.EmotionGraph {
	nodes := make([]insights.EmotionGraphNode, 0, len(acc.emotionOrder)+len(acc.causeOrder))
	edges := make([]insights.EmotionGraphEdge, 0, len(acc.pairOrder))

	maxWeight := 0
	for _, id := range acc.emotionOrder {
		e := acc.emotions[id]
		meta, _ := emotions.Lookup(id)
		avg := e.total / float64(e.count)
		nodes = append(nodes, insights.EmotionGraphNode{
			ID:               EmotionNodeID(id),
			Kind:             insights.NodeKindEmotion,
			Label:            meta.Label,
			Color:            meta.Color,
			Size:             scale(avg, emotionNodeMinSize, emotionNodeMaxSize),
			Weight:           e.count,
			AverageIntensity: avg,
		})
		maxWeight = max(maxWeight, e.count)
	}

	maxCauseCount := 0
	for _, key := range acc.causeOrder {
		maxCauseCount = max(maxCauseCount, acc.causes[key].count)
	}
	for _, key := range acc.causeOrder {
		c := acc.causes[key]
		nodes = append(nodes, insights.EmotionGraphNode{
			ID:               CauseNodeID(key),
			Kind:             insights.NodeKindCause,
			Label:            c.label,
			Description:      c.description,
			Color:            causeNodeColor,
			Size:             scale(float64(c.count)/float64(maxCauseCount), causeNodeMinSize, causeNodeMaxSize),
			Weight:           c.count,
			AverageIntensity: c.total / float64(c.count),
		})
		maxWeight = max(maxWeight, c.count)
	}

	for _, pairKey := range acc.pairOrder {
		p := acc.pairs[pairKey]
		weight := emotions.Clamp01(p.weight)
		source := EmotionNodeID(p.emotion)
		target := CauseNodeID(p.cause)
		edges = append(edges, insights.EmotionGraphEdge{
			ID:     source + "->" + target,
			Source: source,
			Target: target,
			Weight: weight,
			Width:  scale(weight, edgeMinWidth, edgeMaxWidth),
			Count:  p.count,
		})
	}

	stats := insights.GraphStatistics{
		TotalNodes:           len(nodes),
		TotalEdges:           len(edges),
		EmotionNodes:         len(acc.emotionOrder),
		CauseNodes:           len(acc.causeOrder),
		MaxNodeWeight:        maxWeight,
		StrongestConnections: strongestEdges(edges, graphTopN),
		DominantCauses:       acc.dominantCauses(graphTopN),
		Clusters:             acc.clusters(),
	}
	if len(nodes) > 0 {
		stats.AverageConnections = 2 * float64(len(edges)) / float64(len(nodes))
	}

	return insights.EmotionGraph{Nodes: nodes, Edges: edges, Statistics: stats}
}

func strongestEdges(edges []insights.EmotionGraphEdge, n int) []insights.EmotionGraphEdge {
	sorted := make([]insights.EmotionGraphEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Weight != sorted[j].Weight {
			return sorted[i].Weight > sorted[j].Weight
		}
		return sorted[i].Count > sorted[j].Count
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func (acc *graphAccumulator) dominantCauses(n int) []insights.CauseSummary {
	summaries := make([]insights.CauseSummary, 0, len(acc.causeOrder))
	for _, key := range acc.causeOrder {
		c := acc.causes[key]
		linked := make([]string, len(c.emotions))
		copy(linked, c.emotions)
		summaries = append(summaries, insights.CauseSummary{
			NodeID:   CauseNodeID(key),
			Cause:    c.label,
			Count:    c.count,
			Emotions: linked,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].Count > summaries[j].Count })
	if len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries
}

// clusters groups emotions greedily in a single pass: each unvisited emotion
// seeds a cluster and pulls in every later unvisited emotion that shares at
// least two causes with it. Only groups of two or more are reported.
func (acc *graphAccumulator) clusters() []insights.EmotionCluster {
	clusters := []insights.EmotionCluster{}
	visited := make(map[string]bool)

	for i, seedID := range acc.emotionOrder {
		if visited[seedID] {
			continue
		}
		visited[seedID] = true
		seed := acc.emotions[seedID]

		members := []string{EmotionNodeID(seedID)}
		sharedSet := make(map[string]bool)
		for _, otherID := range acc.emotionOrder[i+1:] {
			if visited[otherID] {
				continue
			}
			other := acc.emotions[otherID]
			var shared []string
			for _, key := range seed.causes {
				if other.linked[key] {
					shared = append(shared, key)
				}
			}
			if len(shared) < clusterMinSharedCauses {
				continue
			}
			visited[otherID] = true
			members = append(members, EmotionNodeID(otherID))
			for _, key := range shared {
				sharedSet[key] = true
			}
		}

		if len(members) < 2 {
			continue
		}
		var sharedCauses []string
		for _, key := range seed.causes {
			if sharedSet[key] {
				sharedCauses = append(sharedCauses, acc.causes[key].label)
			}
		}
		clusters = append(clusters, insights.EmotionCluster{
			ID:           fmt.Sprintf("cluster_%d", len(clusters)+1),
			Emotions:     members,
			SharedCauses: sharedCauses,
		})
	}
	return clusters
}

// EmotionNodeID is the graph node id of a canonical emotion.
func EmotionNodeID(emotion string) string {
	return emotionNodePrefix + emotion
}

// CauseNodeID derives a stable node id from normalized cause text.
func CauseNodeID(normalizedCause string) string {
	sum := blake2b.Sum256([]byte(normalizedCause))
	return causeNodePrefix + hex.EncodeToString(sum[:8])
}

// normalizeCause folds case and whitespace so "Work  Deadline" and
// "work deadline" are the same cause.
func normalizeCause(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// scale maps v in [0,1] onto [lo,hi].
func scale(v, lo, hi float64) float64 {
	return lo + emotions.Clamp01(v)*(hi-lo)
}
