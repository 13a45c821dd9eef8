// Package storage reads source documents from object storage.
//
// S3, MinIO and Google Cloud Storage are supported through one read-only
// Storage interface; NewFromDriver picks the backend by name.
package storage
