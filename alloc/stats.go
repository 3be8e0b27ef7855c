package alloc

type Stats struct {
	Allocs      int         `json:"allocs"`
	Deallocs    int         `json:"deallocs"`
	LiveRecords int         `json:"live_records"`
	LiveBytes   int         `json:"live_bytes"`
	MappedBytes int         `json:"mapped_bytes,omitempty"`
	FreeBytes   int         `json:"free_bytes,omitempty"`
	Types       []TypeStats `json:"types,omitempty"`
}

type TypeStats struct {
	Name        string `json:"name"`
	Allocs      int    `json:"allocs"`
	Deallocs    int    `json:"deallocs"`
	LiveRecords int    `json:"live_records"`
}
