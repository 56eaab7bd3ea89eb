package autoblog

// BlogPost is one generated page as recorded in the blogs table.
type BlogPost struct {
	ID          int64
	Title       string
	Topic       string
	Filename    string
	CreatedDate string // "2006-01-02 15:04:05", local time
	Downloaded  bool
}

// DownloadFilter selects posts by their downloaded flag.
type DownloadFilter int

const (
	AllPosts DownloadFilter = iota
	OnlyAvailable
	OnlyDownloaded
)

// dateLayout is the stored format of created dates and processed records.
const dateLayout = "2006-01-02 15:04:05"
