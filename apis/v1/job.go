package v1

const (
	CompressJobKind = "CompressJob"

	DefaultQuality     = 0.8
	DefaultConcurrency = 1
	DefaultSuffix      = "_compressed"

	DefaultManifestName = "manifest"

	ArchiveFormatTar = "tar"
	ArchiveFormatZip = "zip"
)

type CompressJob struct {
	Kind     string          `yaml:"kind" json:"kind" validate:"required,oneof=CompressJob"`
	Metadata Metadata        `yaml:"metadata" json:"metadata"`
	Spec     CompressJobSpec `yaml:"spec" json:"spec"`
}

type Metadata struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

// CompressJobSpec lists the packages to compress and where the results go.
type CompressJobSpec struct {
	// Quality used to re-encode JPEG images, between 0 and 1. PNG images always use
	// the best compression level. Default: "0.8"
	Quality *float64 `yaml:"quality,omitempty" json:"quality,omitempty" validate:"omitempty,gte=0,lte=1"`

	// Concurrency is the number of packages compressed at the same time. Default: "1"
	Concurrency int `yaml:"concurrency,omitempty" json:"concurrency,omitempty" validate:"omitempty,gte=1,lte=64"`

	Documents []DocumentSpec `yaml:"documents" json:"documents" validate:"required,min=1,unique=ID,dive"`

	Output *OutputSpec `yaml:"output,omitempty" json:"output,omitempty"`
}

// DocumentSpec is a single Word (.docx) or Slide (.pptx) package.
type DocumentSpec struct {
	ID string `yaml:"id" json:"id" validate:"required"`

	// Path to the package on the local filesystem.
	Path string `yaml:"path" json:"path" template:"" validate:"required"`

	// Output is the name of the compressed package in the sink. Defaults to the input
	// file name with the output suffix inserted before the extension.
	Output string `yaml:"output,omitempty" json:"output,omitempty" template:""`
}

// OutputSpec configures where compressed packages are written.
type OutputSpec struct {
	// Sink configures the destination (default: stdout).
	Sink *SinkSpec `yaml:"sink,omitempty" json:"sink,omitempty"`

	// Archive bundles every compressed package into a single archive.
	Archive *ArchiveSpec `yaml:"archive,omitempty" json:"archive,omitempty"`

	// Suffix appended to the file stem of generated output names. Default: "_compressed"
	Suffix *string `yaml:"suffix,omitempty" json:"suffix,omitempty" template:""`

	// Manifest writes a summary of the run next to the outputs.
	Manifest *ManifestSpec `yaml:"manifest,omitempty" json:"manifest,omitempty"`
}

// ManifestSpec describes the run summary written to the sink after every output:
// the run ID, and per document its sizes, statistics and xxhash digest.
type ManifestSpec struct {
	// Name of the manifest without extension. Default: "manifest"
	Name string `yaml:"name,omitempty" json:"name,omitempty" template:""`

	// Format of the manifest. Default: "json"
	Format string `yaml:"format,omitempty" json:"format,omitempty" validate:"omitempty,oneof=json yaml"`
}

// ArchiveSpec bundles every output into a single archive.
type ArchiveSpec struct {
	// Name of the archive without extension. Defaults to the job name.
	Name string `yaml:"name,omitempty" json:"name,omitempty" template:""`

	// Format of the archive. Default: "tar"
	Format string `yaml:"format,omitempty" json:"format,omitempty" validate:"omitempty,oneof=tar zip"`

	// Compression applied to the tar stream, only valid with the tar format. Default: "gzip"
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty" validate:"omitempty,oneof=gzip zstd lz4 none"`
}

// SinkSpec configures the output destination (exactly one field should be set).
type SinkSpec struct {
	Stdout     *StdoutSinkSpec     `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	Filesystem *FilesystemSinkSpec `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`
	S3         *S3SinkSpec         `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// StdoutSinkSpec streams the compressed package to stdout. Only valid with a
// single document and no archive.
type StdoutSinkSpec struct{}

// FilesystemSinkSpec writes compressed packages to a local directory.
type FilesystemSinkSpec struct {
	// Path is the base directory. Defaults to the current working directory.
	Path *string `yaml:"path,omitempty" json:"path,omitempty" template:""`

	// Prefix is a subdirectory below Path, for example "${JOB_NAME}/${JOB_DATE_ISO8601}".
	Prefix *string `yaml:"prefix,omitempty" json:"prefix,omitempty" template:""`
}

// S3SinkSpec uploads compressed packages to S3-compatible object storage.
type S3SinkSpec struct {
	Bucket string `yaml:"bucket" json:"bucket" template:"" validate:"required"`

	// Region of the bucket. Defaults to the AWS SDK resolution chain.
	Region *string `yaml:"region,omitempty" json:"region,omitempty" template:""`

	// Endpoint for S3-compatible services such as MinIO or R2.
	Endpoint *string `yaml:"endpoint,omitempty" json:"endpoint,omitempty" template:""`

	// Prefix prepended to every object key.
	Prefix *string `yaml:"prefix,omitempty" json:"prefix,omitempty" template:""`

	// Credentials are static keys. Defaults to the AWS SDK credential chain.
	Credentials *S3Credentials `yaml:"credentials,omitempty" json:"credentials,omitempty"`

	ForcePathStyle bool `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
}

type S3Credentials struct {
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" template:"" validate:"required"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" template:"" validate:"required"`
}
