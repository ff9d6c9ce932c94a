package dto

type UploadResponse struct {
	URL    string `json:"url"`
	Folder string `json:"folder"`
}
