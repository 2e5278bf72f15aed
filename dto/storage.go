package dto

type HandleStats struct {
	Acquired int64 `json:"acquired"`
	Released int64 `json:"released"`
	Live     int64 `json:"live"`
}

type StorageStatsResponse struct {
	RecordDriver   string      `json:"recordDriver"`
	BlobDriver     string      `json:"blobDriver"`
	Records        int64       `json:"records"`
	Blobs          int64       `json:"blobs"`
	BlobBytes      int64       `json:"blobBytes"`
	BlobsAvailable bool        `json:"blobsAvailable"`
	Handles        HandleStats `json:"handles"`
}
