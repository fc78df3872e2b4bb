// Package s3 uploads data directory archives to S3-compatible object
// storage before a destructive reset.
//
// Any endpoint speaking the S3 protocol works. When an endpoint is given,
// path-style addressing is used, which is what self-hosted stores such as
// MinIO or Ceph RGW expect.
package s3
