package v1

// DeepCopy returns a copy of the job that shares no slices or pointers with j,
// so templates can be expanded on it without touching the original.
func (j CompressJob) DeepCopy() CompressJob {
	out := j
	out.Spec.Quality = copyPtr(j.Spec.Quality)
	if j.Spec.Documents != nil {
		out.Spec.Documents = append([]DocumentSpec(nil), j.Spec.Documents...)
	}
	out.Spec.Output = j.Spec.Output.DeepCopy()
	return out
}

func (o *OutputSpec) DeepCopy() *OutputSpec {
	if o == nil {
		return nil
	}
	out := *o
	out.Sink = o.Sink.DeepCopy()
	out.Archive = copyPtr(o.Archive)
	out.Suffix = copyPtr(o.Suffix)
	out.Manifest = copyPtr(o.Manifest)
	return &out
}

func (s *SinkSpec) DeepCopy() *SinkSpec {
	if s == nil {
		return nil
	}
	out := *s
	out.Stdout = copyPtr(s.Stdout)
	if s.Filesystem != nil {
		fs := *s.Filesystem
		fs.Path = copyPtr(fs.Path)
		fs.Prefix = copyPtr(fs.Prefix)
		out.Filesystem = &fs
	}
	if s.S3 != nil {
		s3 := *s.S3
		s3.Region = copyPtr(s3.Region)
		s3.Endpoint = copyPtr(s3.Endpoint)
		s3.Prefix = copyPtr(s3.Prefix)
		s3.Credentials = copyPtr(s3.Credentials)
		out.S3 = &s3
	}
	return &out
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
