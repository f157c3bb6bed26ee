package comment

type CreateCommentDTO struct {
	Content string `json:"content" validate:"notblank,max=1000"`
}
