package schemas

type TagSubtree struct {
	RootID   string `json:"rootId" binding:"required"`
	Category string `json:"category" binding:"required,category"`
}

type TagResult struct {
	Folders int64 `json:"folders"`
	Files   int64 `json:"files"`
}

// BackfillIn drives the one-shot legacy migration: each root-level folder
// whose name matches a mapping key (and that carries no category yet) is
// tagged, together with its whole subtree. A nil FacilityID runs the
// backfill across every facility.
type BackfillIn struct {
	FacilityID *int64            `json:"facilityId"`
	Mapping    map[string]string `json:"mapping" binding:"required"`
}

type BackfillOut struct {
	RootsMatched int   `json:"rootsMatched"`
	Folders      int64 `json:"folders"`
	Files        int64 `json:"files"`
}

type CategoryStats struct {
	Category  string `json:"category"`
	Folders   int64  `json:"folders"`
	Files     int64  `json:"files"`
	TotalSize int64  `json:"totalSize"`
}

type CategoryStatsResponse struct {
	Stats []CategoryStats `json:"stats"`
}
