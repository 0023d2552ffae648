package book

import "time"

// Box is an axis-aligned bounding box in image pixel coordinates.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Detection is one recognized text region as reported by the recognition
// capability. The core treats it as read-only.
type Detection struct {
	Box        Box     `json:"box"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// PageMetrics summarizes the detections of a single page.
type PageMetrics struct {
	DetectionCount    int     `json:"detection_count"`
	WordCount         int     `json:"word_count"`
	AverageConfidence float64 `json:"average_confidence"`
}

// PageResult is the per-page outcome of a book run. Pages appear in input
// order; PageNumber is 1-based. A failed page carries zero metrics and an
// error description instead of text.
type PageResult struct {
	PageNumber int         `json:"page_number"`
	Filename   string      `json:"filename"`
	Text       string      `json:"text"`
	Detections []Detection `json:"detections,omitempty"`
	Metrics    PageMetrics `json:"metrics"`
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
}

// Info carries book-level accounting for a completed run.
type Info struct {
	TotalPages      int       `json:"total_pages"`
	SuccessfulPages int       `json:"successful_pages"`
	FailedPages     int       `json:"failed_pages"`
	ProcessingDate  time.Time `json:"processing_date"`
	BookType        string    `json:"book_type"`
	Languages       []string  `json:"languages"`
}

// Statistics aggregates page metrics over a whole book.
//
// AverageConfidence is the detection-weighted mean of the per-page average
// confidences; when no detections exist it falls back to the unweighted mean
// over successful pages.
type Statistics struct {
	TotalDetections     int     `json:"total_detections"`
	TotalWords          int     `json:"total_words"`
	AverageWordsPerPage float64 `json:"average_words_per_page"`
	AverageConfidence   float64 `json:"average_confidence"`
}

// Result is the complete outcome of a book run, in the shape consumed by the
// report serializers (field names are a stable contract).
type Result struct {
	Info       Info         `json:"book_info"`
	Statistics Statistics   `json:"statistics"`
	Pages      []PageResult `json:"pages"`
	FullText   string       `json:"full_text"`
}
