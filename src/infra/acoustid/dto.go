package acoustid

// Wire types for the AcoustID v2 lookup endpoint. These mirror the
// JSON response exactly and must not leak outside this package; the
// adapter converts them to domain types.

type lookupResponse struct {
	Status string `json:"status"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Results []lookupResult `json:"results"`
}

type lookupResult struct {
	ID         string      `json:"id"`
	Score      float64     `json:"score"`
	Recordings []recording `json:"recordings"`
}

type recording struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Duration      float64        `json:"duration"`
	Artists       []artistCredit `json:"artists"`
	ReleaseGroups []releaseGroup `json:"releasegroups"`
}

type artistCredit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type releaseGroup struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Type           string   `json:"type"`
	SecondaryTypes []string `json:"secondarytypes"`
}
