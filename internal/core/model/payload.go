package model

// Payload is a per-source snapshot slice. Each normalized top-level record
// knows which SourceData field it occupies, so the aggregator can attach
// results without switching on source keys.
type Payload interface {
	Attach(dst *SourceData)
}

func (d *TrackerData) Attach(dst *SourceData)    { dst.Zentao = d }
func (a *CommitActivity) Attach(dst *SourceData) { dst.GitLab = a }
func (o *OfficeData) Attach(dst *SourceData)     { dst.OA = o }
