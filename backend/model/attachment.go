package model

// AttachmentKind tags the variant held by an Attachment
type AttachmentKind string

const (
	AttachmentAbsent   AttachmentKind = ""
	AttachmentUploaded AttachmentKind = "uploaded"
	AttachmentExternal AttachmentKind = "external"
)

// Attachment is the contract file reference. Exactly one variant is set:
// Absent carries nothing, Uploaded carries a storage key and file metadata,
// External carries a URL.
type Attachment struct {
	Kind        AttachmentKind `json:"kind" yaml:"kind"`
	Key         string         `json:"key,omitempty" yaml:"key,omitempty"`
	Filename    string         `json:"filename,omitempty" yaml:"filename,omitempty"`
	ContentType string         `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Size        int64          `json:"size,omitempty" yaml:"size,omitempty"`
	URL         string         `json:"url,omitempty" yaml:"url,omitempty"`
}

// NoAttachment returns the Absent variant
func NoAttachment() Attachment {
	return Attachment{}
}

// UploadedAttachment returns the Uploaded variant
func UploadedAttachment(key, filename, contentType string, size int64) Attachment {
	return Attachment{
		Kind:        AttachmentUploaded,
		Key:         key,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
	}
}

// ExternalAttachment returns the External variant
func ExternalAttachment(url string) Attachment {
	return Attachment{Kind: AttachmentExternal, URL: url}
}

// Present reports whether any file is attached
func (a Attachment) Present() bool {
	switch a.Kind {
	case AttachmentUploaded:
		return a.Key != ""
	case AttachmentExternal:
		return a.URL != ""
	default:
		return false
	}
}

// DownloadName is the file name offered to the client on download
func (a Attachment) DownloadName() string {
	if a.Kind == AttachmentUploaded && a.Filename != "" {
		return a.Filename
	}
	return "contract_file"
}
