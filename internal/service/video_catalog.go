package service

import (
	"math/rand/v2"
	"sync"

	"studentportal/internal/model"
)

const upcomingCount = 4

var videoCatalog = []model.Video{
	{ID: "eCZ5IDudt44", Title: "Electric Charges and Fields - Physics", Subject: "Physics"},
	{ID: "ESS3w7L7CAU", Title: "Arrangement & Application of Resistances", Subject: "Physics"},
	{ID: "NybHckSEQBI", Title: "Maths: Lesson 1 - Algebra Basics", Subject: "Maths"},
	{ID: "LwCRRUa8yTU", Title: "Maths: Lesson 2 - Linear Equations", Subject: "Maths"},
	{ID: "QX4j_zHAlw8", Title: "Chemistry: Lesson 2 - Atomic Structure", Subject: "Chemistry"},
}

// VideoSelection is one draw from the catalog. Current may also appear in Upcoming.
type VideoSelection struct {
	Current  model.Video
	Upcoming []model.Video
}

// VideoCatalog draws videos from the fixed lesson list.
type VideoCatalog struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewVideoCatalog uses rng for every draw; nil selects a randomly seeded source.
func NewVideoCatalog(rng *rand.Rand) *VideoCatalog {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &VideoCatalog{rng: rng}
}

// Pick samples four distinct upcoming videos and, independently, one current video.
func (c *VideoCatalog) Pick() VideoSelection {
	c.mu.Lock()
	defer c.mu.Unlock()

	perm := c.rng.Perm(len(videoCatalog))
	upcoming := make([]model.Video, 0, upcomingCount)
	for _, i := range perm[:upcomingCount] {
		upcoming = append(upcoming, videoCatalog[i])
	}
	return VideoSelection{
		Current:  videoCatalog[c.rng.IntN(len(videoCatalog))],
		Upcoming: upcoming,
	}
}

// Videos returns a copy of the catalog.
func (c *VideoCatalog) Videos() []model.Video {
	return append([]model.Video(nil), videoCatalog...)
}
