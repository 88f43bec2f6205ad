package forumtest

import (
	"errors"
	"sort"
	"time"
)

var errExists = errors.New("username already exists")

type user struct {
	id        int64
	username  string
	password  string
	profile   string
	avatarURL string
}

type post struct {
	id        int64
	kind      int
	authorID  int64
	title     string
	content   string
	status    int
	createdAt time.Time
	updatedAt time.Time
}

type comment struct {
	id         int64
	targetType int
	targetID   int64
	parentID   int64
	authorID   int64
	content    string
	depth      int
	createdAt  time.Time
}

type notification struct {
	id         int64
	kind       int
	actorID    int64
	targetType int
	targetID   int64
	content    string
	read       bool
	createdAt  time.Time
}

type like struct {
	targetType int
	targetID   int64
}

// db is the backend's state. The Server's mutex guards it.
type db struct {
	nextID int64

	users         map[int64]*user
	byName        map[string]*user
	posts         map[int64]*post
	comments      map[int64]*comment
	likes         map[like]map[int64]bool
	favorites     map[int64][]int64 // user -> post ids, newest last
	follows       map[int64]map[int64]bool
	notifications map[int64][]*notification
	files         map[string][]byte
}

func newDB() *db {
	return &db{
		users:         make(map[int64]*user),
		byName:        make(map[string]*user),
		posts:         make(map[int64]*post),
		comments:      make(map[int64]*comment),
		likes:         make(map[like]map[int64]bool),
		favorites:     make(map[int64][]int64),
		follows:       make(map[int64]map[int64]bool),
		notifications: make(map[int64][]*notification),
		files:         make(map[string][]byte),
	}
}

func (d *db) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *db) addUser(username, password string) (*user, error) {
	if u, ok := d.byName[username]; ok {
		return u, errExists
	}
	u := &user{id: d.id(), username: username, password: password}
	d.users[u.id] = u
	d.byName[username] = u
	return u, nil
}

func (d *db) name(id int64) string {
	if u, ok := d.users[id]; ok {
		return u.username
	}
	return ""
}

func (d *db) notify(to int64, n *notification) {
	if to == n.actorID {
		return
	}
	n.id = d.id()
	n.createdAt = time.Now()
	d.notifications[to] = append(d.notifications[to], n)
}

// publishedPosts returns matching published posts, newest first.
func (d *db) publishedPosts(match func(*post) bool) []*post {
	var out []*post
	for _, p := range d.posts {
		if p.status == 0 && match(p) {
			out = append(out, p)
		}
	}
	sortNewest(out)
	return out
}

func (d *db) drafts(author int64) []*post {
	var out []*post
	for _, p := range d.posts {
		if p.status == 1 && p.authorID == author {
			out = append(out, p)
		}
	}
	sortNewest(out)
	return out
}

func sortNewest(ps []*post) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].id > ps[j].id })
}

// toggleLike flips the like of user on target and reports the new state.
func (d *db) toggleLike(userID int64, l like) bool {
	set := d.likes[l]
	if set == nil {
		set = make(map[int64]bool)
		d.likes[l] = set
	}
	if set[userID] {
		delete(set, userID)
		return false
	}
	set[userID] = true
	return true
}

// window returns the [start,end) bounds of page in a list of n items.
func window(n, page, size int) (int, int) {
	start := (page - 1) * size
	if start > n {
		start = n
	}
	end := start + size
	if end > n {
		end = n
	}
	return start, end
}
