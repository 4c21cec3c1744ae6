package collect

import (
	"os"
	"strings"
)

// Kind discriminates the source variants a descriptor can resolve to.
type Kind int

const (
	// KindJSONL is a JSONL file from a previous run, re-flattened into a
	// single combined document.
	KindJSONL Kind = iota
	// KindS3 is an s3://bucket/prefix listing.
	KindS3
	// KindZip is a local zip archive.
	KindZip
	// KindDir is an existing local directory.
	KindDir
	// KindFile is an existing local regular file.
	KindFile
	// KindGlob is a comma-separated list of glob patterns.
	KindGlob
)

// String returns the short name used in logs and metrics dimensions.
func (k Kind) String() string {
	switch k {
	case KindJSONL:
		return "jsonl"
	case KindS3:
		return "s3"
	case KindZip:
		return "zip"
	case KindDir:
		return "dir"
	case KindFile:
		return "file"
	case KindGlob:
		return "glob"
	default:
		return "unknown"
	}
}

// Source is the resolved form of a source descriptor. Classification
// happens exactly once, at resolve time; collection dispatches on Kind
// without re-inspecting the descriptor.
type Source struct {
	Kind Kind
	// Descriptor is the raw argument as given.
	Descriptor string
	// Bucket and Prefix are populated for KindS3.
	Bucket string
	Prefix string
}

// ResolveOptions adjust descriptor classification.
type ResolveOptions struct {
	// TreatAsJSONL forces the JSONL variant regardless of descriptor
	// shape. Validity of the named file is checked at collect time.
	TreatAsJSONL bool
}

// Resolve classifies descriptor into a Source. Resolution is total: it
// never fails, and unusable descriptors surface as collection errors
// when the source is collected. Variants are checked in priority order:
// forced JSONL, s3:// prefix, .zip suffix, existing directory, existing
// regular file, and finally a glob pattern list.
func Resolve(descriptor string, opts ResolveOptions) Source {
	if opts.TreatAsJSONL {
		return Source{Kind: KindJSONL, Descriptor: descriptor}
	}

	if strings.HasPrefix(descriptor, "s3://") {
		bucket, prefix := splitS3Path(descriptor)
		return Source{Kind: KindS3, Descriptor: descriptor, Bucket: bucket, Prefix: prefix}
	}

	if strings.HasSuffix(descriptor, ".zip") {
		return Source{Kind: KindZip, Descriptor: descriptor}
	}

	if info, err := os.Stat(descriptor); err == nil {
		if info.IsDir() {
			return Source{Kind: KindDir, Descriptor: descriptor}
		}
		if info.Mode().IsRegular() {
			return Source{Kind: KindFile, Descriptor: descriptor}
		}
	}

	return Source{Kind: KindGlob, Descriptor: descriptor}
}

// splitS3Path splits "s3://bucket/prefix" into bucket and prefix.
// The prefix may be empty.
func splitS3Path(path string) (bucket, prefix string) {
	rest := strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		prefix = parts[1]
	}
	return bucket, prefix
}
