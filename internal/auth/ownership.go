package auth

import "mikroblog/internal/models"

// CanMutate reports whether user may update or delete post. Only the owner
// may mutate; anonymous callers and ownerless legacy posts are always
// denied. Reads and creates are not gated here.
func CanMutate(user *models.User, post *models.Post) bool {
	if user == nil || post == nil || post.UserID == nil {
		return false
	}
	return user.ID == *post.UserID
}
