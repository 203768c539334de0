package export

import (
	"context"
	"fmt"
	"os"

	"rackcatalog/internal/blob"
	blobfs "rackcatalog/internal/infra/blob/fs"
	blobmemory "rackcatalog/internal/infra/blob/memory"
	blobs3 "rackcatalog/internal/infra/blob/s3"
)

// OpenBlobStore selects a blob.Store implementation using environment variables.
//
//	RACKCATALOG_BLOB_DRIVER: fs|s3|memory (default fs)
//	RACKCATALOG_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	(S3 specific variables documented in the s3 package)
func OpenBlobStore(ctx context.Context) (blob.Store, error) {
	driver := os.Getenv("RACKCATALOG_BLOB_DRIVER")
	if driver == "" {
		driver = string(blob.DriverFilesystem)
	}
	switch blob.Driver(driver) {
	case blob.DriverFilesystem:
		return blobfs.New(os.Getenv("RACKCATALOG_BLOB_FS_ROOT"))
	case blob.DriverS3:
		return blobs3.OpenFromEnv(ctx)
	case blob.DriverMemory:
		return blobmemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
