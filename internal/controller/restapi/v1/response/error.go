package response

type Error struct {
	Error   string `json:"error" example:"Upload failed"`
	Details string `json:"details,omitempty" example:"operation error S3: PutObject, https response error StatusCode: 403"`
}
