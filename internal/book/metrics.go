package book

import (
	"sort"
	"strings"
)

// SortReadingOrder orders detections top-to-bottom, then left-to-right, which
// approximates the reading order of a single-column page.
func SortReadingOrder(detections []Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].Box.Y == detections[j].Box.Y {
			return detections[i].Box.X < detections[j].Box.X
		}
		return detections[i].Box.Y < detections[j].Box.Y
	})
}

// JoinText concatenates detection texts in their current order, one detection
// per line. Empty detections are skipped.
func JoinText(detections []Detection) string {
	lines := make([]string, 0, len(detections))
	for _, d := range detections {
		if t := strings.TrimSpace(d.Text); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// ComputeMetrics derives page metrics from a detection list. The average
// confidence of a page without detections is defined as zero.
func ComputeMetrics(detections []Detection) PageMetrics {
	m := PageMetrics{DetectionCount: len(detections)}
	if len(detections) == 0 {
		return m
	}
	var sum float64
	for _, d := range detections {
		sum += d.Confidence
		m.WordCount += len(strings.Fields(d.Text))
	}
	m.AverageConfidence = sum / float64(len(detections))
	return m
}
