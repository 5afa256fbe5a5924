package db

import (
	"github.com/diamondburned/postlist/postlist"
	"github.com/diamondburned/postlist/server/db/internal/null"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type postRow struct {
	Ord          int         `db:"ord"`
	ID           string      `db:"id"`
	Title        string      `db:"title"`
	PublishDate  string      `db:"publishdate"`
	Summary      string      `db:"summary"`
	AuthorName   string      `db:"authorname"`
	AuthorAvatar null.String `db:"authoravatar"`
}

func (r postRow) post(cats []postlist.Category) (postlist.Post, error) {
	d, err := postlist.ParseDate(r.PublishDate)
	if err != nil {
		return postlist.Post{}, err
	}

	if cats == nil {
		cats = []postlist.Category{}
	}

	return postlist.Post{
		ID:          r.ID,
		Title:       r.Title,
		PublishDate: d,
		Summary:     r.Summary,
		Categories:  cats,
		Author: postlist.Author{
			Name:   r.AuthorName,
			Avatar: r.AuthorAvatar.String(),
		},
	}, nil
}

type categoryRow struct {
	PostID string `db:"postid"`
	postlist.Category
}

func insertPost(tx *sqlx.Tx, ord int, p postlist.Post) error {
	if p.ID == "" {
		return postlist.ErrEmptyPostID
	}

	_, err := tx.Exec(
		"INSERT INTO posts VALUES (?, ?, ?, ?, ?, ?, ?)",
		ord, p.ID, p.Title, p.PublishDate.String(), p.Summary,
		p.Author.Name, null.String(p.Author.Avatar),
	)

	if err != nil {
		if errIsConstraint(err) {
			return postlist.ErrDuplicatePost
		}
		return err
	}

	for i, cat := range p.Categories {
		_, err := tx.Exec(
			"INSERT INTO postcategories VALUES (?, ?, ?, ?)",
			p.ID, i, cat.ID, cat.Name,
		)
		if err != nil {
			return errors.Wrap(err, "Failed to insert category")
		}
	}

	return nil
}

// Posts returns every post in dataset order.
func (d *Transaction) Posts() ([]postlist.Post, error) {
	var rows []postRow

	if err := d.Select(&rows, "SELECT * FROM posts ORDER BY ord ASC"); err != nil {
		return nil, errors.Wrap(err, "Failed to query for posts")
	}

	var cats []categoryRow

	err := d.Select(&cats,
		"SELECT postid, categoryid, name FROM postcategories ORDER BY postid, position")
	if err != nil {
		return nil, errors.Wrap(err, "Failed to query for categories")
	}

	var catMap = make(map[string][]postlist.Category, len(rows))
	for _, cat := range cats {
		catMap[cat.PostID] = append(catMap[cat.PostID], cat.Category)
	}

	var posts = make([]postlist.Post, len(rows))

	for i, row := range rows {
		p, err := row.post(catMap[row.ID])
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read post %q", row.ID)
		}
		posts[i] = p
	}

	return posts, nil
}

// Post returns a single post with the ID. It returns ErrPostNotFound if there
// is no such post.
func (d *Transaction) Post(id string) (*postlist.Post, error) {
	var row postRow

	if err := d.Get(&row, "SELECT * FROM posts WHERE id = ?", id); err != nil {
		if errIsNoRows(err) {
			return nil, postlist.ErrPostNotFound
		}

		return nil, errors.Wrap(err, "Failed to get post")
	}

	var cats []postlist.Category

	err := d.Select(&cats,
		"SELECT categoryid, name FROM postcategories WHERE postid = ? ORDER BY position", id)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to get categories")
	}

	p, err := row.post(cats)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read post %q", id)
	}

	return &p, nil
}
