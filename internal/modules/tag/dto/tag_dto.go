package dto

type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

type RenameTagRequest struct {
	OldTag string `json:"old_tag" binding:"required,max=40"`
	NewTag string `json:"new_tag" binding:"required,max=40"`
}

type MergeTagsRequest struct {
	SourceTags []string `json:"source_tags" binding:"required,min=1,max=20,dive,required,max=40"`
	TargetTag  string   `json:"target_tag" binding:"required,max=40"`
}

type TagUpdateResponse struct {
	Message      string `json:"message"`
	UpdatedPosts int    `json:"updated_posts"`
}
