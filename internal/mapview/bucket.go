package mapview

type Bucket int

const (
	BucketEmpty Bucket = iota
	BucketLow
	BucketMedium
	BucketHigh
	BucketVeryHigh
)

// BucketFor assigns a tender count to its intensity bucket:
// 0, 1-2, 3-4, 5-8, 9+.
func BucketFor(count int) Bucket {
	switch {
	case count <= 0:
		return BucketEmpty
	case count <= 2:
		return BucketLow
	case count <= 4:
		return BucketMedium
	case count <= 8:
		return BucketHigh
	default:
		return BucketVeryHigh
	}
}

func (b Bucket) String() string {
	switch b {
	case BucketLow:
		return "low"
	case BucketMedium:
		return "medium"
	case BucketHigh:
		return "high"
	case BucketVeryHigh:
		return "very-high"
	default:
		return "empty"
	}
}

func (b Bucket) Fill() string {
	switch b {
	case BucketLow:
		return "#dbeafe"
	case BucketMedium:
		return "#93c5fd"
	case BucketHigh:
		return "#3b82f6"
	case BucketVeryHigh:
		return "#1d4ed8"
	default:
		return "#f3f4f6"
	}
}

// LabelColor switches to white on the dark buckets.
func (b Bucket) LabelColor() string {
	if b > BucketMedium {
		return "#ffffff"
	}
	return "#374151"
}

func (b Bucket) Legend() string {
	switch b {
	case BucketLow:
		return "1-2 licitaciones"
	case BucketMedium:
		return "3-4 licitaciones"
	case BucketHigh:
		return "5-8 licitaciones"
	case BucketVeryHigh:
		return "9+ licitaciones"
	default:
		return "Sin licitaciones"
	}
}

var allBuckets = []Bucket{BucketEmpty, BucketLow, BucketMedium, BucketHigh, BucketVeryHigh}
