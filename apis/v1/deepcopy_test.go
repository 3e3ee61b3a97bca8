package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCompressJob_DeepCopy(t *testing.T) {
	quality := 0.5
	job := CompressJob{
		Kind:     CompressJobKind,
		Metadata: Metadata{Name: "weekly"},
		Spec: CompressJobSpec{
			Quality:   &quality,
			Documents: []DocumentSpec{{ID: "a", Path: "${DIR}/a.docx"}},
			Output: &OutputSpec{
				Sink: &SinkSpec{
					Filesystem: &FilesystemSinkSpec{Path: strPtr("${DIR}"), Prefix: strPtr("${JOB_NAME}")},
					S3: &S3SinkSpec{
						Bucket:      "${BUCKET}",
						Region:      strPtr("${REGION}"),
						Endpoint:    strPtr("${ENDPOINT}"),
						Prefix:      strPtr("${JOB_NAME}"),
						Credentials: &S3Credentials{AccessKeyID: "${KEY}", SecretAccessKey: "${SECRET}"},
					},
				},
				Archive:  &ArchiveSpec{Name: "${JOB_NAME}"},
				Suffix:   strPtr("_${JOB_NAME}"),
				Manifest: &ManifestSpec{Name: "${JOB_NAME}"},
			},
		},
	}

	cp := job.DeepCopy()
	require.Equal(t, job, cp)

	*cp.Spec.Quality = 0.9
	cp.Spec.Documents[0].Path = "/in/a.docx"
	*cp.Spec.Output.Sink.Filesystem.Path = "/out"
	*cp.Spec.Output.Sink.Filesystem.Prefix = "weekly"
	cp.Spec.Output.Sink.S3.Bucket = "docs"
	*cp.Spec.Output.Sink.S3.Region = "eu-west-1"
	*cp.Spec.Output.Sink.S3.Endpoint = "http://minio"
	*cp.Spec.Output.Sink.S3.Prefix = "weekly"
	cp.Spec.Output.Sink.S3.Credentials.AccessKeyID = "AKIA"
	cp.Spec.Output.Archive.Name = "weekly"
	*cp.Spec.Output.Suffix = "_weekly"
	cp.Spec.Output.Manifest.Name = "weekly"

	assert.Equal(t, 0.5, *job.Spec.Quality)
	assert.Equal(t, "${DIR}/a.docx", job.Spec.Documents[0].Path)
	assert.Equal(t, "${DIR}", *job.Spec.Output.Sink.Filesystem.Path)
	assert.Equal(t, "${JOB_NAME}", *job.Spec.Output.Sink.Filesystem.Prefix)
	assert.Equal(t, "${BUCKET}", job.Spec.Output.Sink.S3.Bucket)
	assert.Equal(t, "${REGION}", *job.Spec.Output.Sink.S3.Region)
	assert.Equal(t, "${ENDPOINT}", *job.Spec.Output.Sink.S3.Endpoint)
	assert.Equal(t, "${JOB_NAME}", *job.Spec.Output.Sink.S3.Prefix)
	assert.Equal(t, "${KEY}", job.Spec.Output.Sink.S3.Credentials.AccessKeyID)
	assert.Equal(t, "${JOB_NAME}", job.Spec.Output.Archive.Name)
	assert.Equal(t, "_${JOB_NAME}", *job.Spec.Output.Suffix)
	assert.Equal(t, "${JOB_NAME}", job.Spec.Output.Manifest.Name)
}

func TestCompressJob_DeepCopyNil(t *testing.T) {
	job := CompressJob{Kind: CompressJobKind, Metadata: Metadata{Name: "weekly"}}

	cp := job.DeepCopy()
	assert.Nil(t, cp.Spec.Quality)
	assert.Nil(t, cp.Spec.Documents)
	assert.Nil(t, cp.Spec.Output)
	assert.Equal(t, job, cp)

	job.Spec.Output = &OutputSpec{}
	cp = job.DeepCopy()
	require.NotNil(t, cp.Spec.Output)
	assert.Nil(t, cp.Spec.Output.Sink)
	assert.NotSame(t, job.Spec.Output, cp.Spec.Output)
}
