package util

// ISOTimeFormat 与浏览器 toISOString 保持一致（毫秒精度，UTC）
const ISOTimeFormat = "2006-01-02T15:04:05.000Z07:00"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimePDF         = "application/pdf"
	MimeZip         = "application/zip"
	MimeOctetStream = "application/octet-stream"
	MimeDocx        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

const (
	MaxInputLength  = 10000
	MaxAnswerLength = 2000
	MaxResumeBytes  = 10 << 20
)

var AllowedResumeExtensions = []string{".pdf", ".docx"}
