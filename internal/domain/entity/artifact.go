package entity

// Artifact output papkaga yoziladigan fayl
type Artifact struct {
	Path string // output papkaga nisbatan, "/" bilan
	Body []byte
}

// Publication render natijasi: fayllar va indekslash uchun havolalar
type Publication struct {
	Artifacts []Artifact
	URLs      []string
}
