package types

// ImageScore is the IoU result for one paired mask file
type ImageScore struct {
	Name         string  `json:"name" csv:"filename"`
	IoU          float64 `json:"iou" csv:"iou"`
	Intersection int     `json:"intersection" csv:"intersection"`
	Union        int     `json:"union" csv:"union"`
}

// Summary holds the corpus-level aggregate of an evaluation run
type Summary struct {
	Count   int     `json:"count"`
	MeanIoU float64 `json:"mean_iou"`
}

// Report is the ordered list of per-image scores plus the summary
type Report struct {
	Scores  []ImageScore `json:"scores"`
	Summary Summary      `json:"summary"`
}

