package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type UploadResponse struct {
	OriginalName string `json:"original_name"`
	DocumentKey  string `json:"document_key"`
	Chunks       int    `json:"chunks"`
	Preview      string `json:"preview"`
}

type PreviewResponse struct {
	OriginalName string `json:"original_name"`
	Markdown     string `json:"markdown"`
}
