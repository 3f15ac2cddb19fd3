package export

import (
	"time"

	"reddit-harvest/internal/harvest/model"

	"github.com/tealeg/xlsx/v3"
)

// WriteXLSX 生成双工作表的 Excel 文件：Posts 与 Comments
func (e *Exporter) WriteXLSX(path string) error {
	posts, err := e.db.AllPosts()
	if err != nil {
		return err
	}
	comments, err := e.db.AllComments()
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	if err := addPostsSheet(file, posts); err != nil {
		return err
	}
	if err := addCommentsSheet(file, comments); err != nil {
		return err
	}
	return file.Save(path)
}

func addPostsSheet(file *xlsx.File, posts []*model.Post) error {
	sheet, err := file.AddSheet("Posts")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	headers := []string{
		"ID", "Title", "Author", "Created", "Score", "Comments",
		"Upvote Ratio", "Self Post", "Subreddit", "URL",
	}
	for _, h := range headers {
		headerRow.AddCell().Value = h
	}

	for _, p := range posts {
		row := sheet.AddRow()
		row.AddCell().Value = p.ID
		row.AddCell().Value = p.Title
		row.AddCell().Value = p.Author

		cell := row.AddCell()
		if p.CreatedUTC > 0 {
			cell.SetDate(time.Unix(p.CreatedUTC, 0).UTC())
		}

		row.AddCell().SetInt(p.Score)
		row.AddCell().SetInt(p.NumComments)
		row.AddCell().SetFloat(p.UpvoteRatio)
		row.AddCell().SetBool(p.IsSelf)
		row.AddCell().Value = p.Subreddit
		row.AddCell().Value = p.URL
	}
	return nil
}

func addCommentsSheet(file *xlsx.File, comments []*model.Comment) error {
	sheet, err := file.AddSheet("Comments")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	headers := []string{
		"ID", "Post ID", "Author", "Created", "Score", "Depth", "Submitter", "Body",
	}
	for _, h := range headers {
		headerRow.AddCell().Value = h
	}

	for _, c := range comments {
		row := sheet.AddRow()
		row.AddCell().Value = c.ID
		row.AddCell().Value = c.PostID
		row.AddCell().Value = c.Author

		cell := row.AddCell()
		if c.CreatedUTC > 0 {
			cell.SetDate(time.Unix(c.CreatedUTC, 0).UTC())
		}

		row.AddCell().SetInt(c.Score)
		row.AddCell().SetInt(c.Depth)
		row.AddCell().SetBool(c.IsSubmitter)
		row.AddCell().Value = c.Body
	}
	return nil
}
