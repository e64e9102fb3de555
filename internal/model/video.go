package model

type Video struct {
	ID      string
	Title   string
	Subject string
}

func (v Video) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

func (v Video) ThumbnailURL() string {
	return "https://img.youtube.com/vi/" + v.ID + "/hqdefault.jpg"
}
