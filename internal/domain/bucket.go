package domain

// Bucket is a recency tier by publish date.
type Bucket string

const (
	BucketWithin2Weeks     Bucket = "within_2_weeks"
	Bucket2To4Weeks        Bucket = "2_to_4_weeks"
	Bucket1To3Months       Bucket = "1_to_3_months"
	BucketOlderThan3Months Bucket = "older_than_3_months"
	BucketUnknown          Bucket = "unknown"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{
	BucketWithin2Weeks,
	Bucket2To4Weeks,
	Bucket1To3Months,
	BucketOlderThan3Months,
	BucketUnknown,
}

func (b Bucket) Label() string {
	switch b {
	case BucketWithin2Weeks:
		return "Last 2 weeks"
	case Bucket2To4Weeks:
		return "2-4 weeks ago"
	case Bucket1To3Months:
		return "1-3 months ago"
	case BucketOlderThan3Months:
		return "More than 3 months ago"
	default:
		return "Unknown"
	}
}
