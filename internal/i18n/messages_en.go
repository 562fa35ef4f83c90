package i18n

import "golang.org/x/text/message"

func init() {
	lang := AmericanEnglish

	// Page
	message.SetString(lang, "page.title", "%s | LetterPlay")
	message.SetString(lang, "page.not_found", "Data not found.")
	message.SetString(lang, "page.loading", "Loading...")
	message.SetString(lang, "page.developer", "Developer")
	message.SetString(lang, "page.publisher", "Publisher")
	message.SetString(lang, "page.favorite", "Favorite")
	message.SetString(lang, "page.add_favorite", "Add to Favorites")
	message.SetString(lang, "page.released", "Released: %s")
	message.SetString(lang, "page.close", "Close")

	// Reviews
	message.SetString(lang, "reviews.title", "Community Reviews")
	message.SetString(lang, "reviews.average", "Average: %.1f")
	message.SetString(lang, "reviews.form_title", "Leave your review")
	message.SetString(lang, "reviews.your_rating", "Your rating:")
	message.SetString(lang, "reviews.commenting_as", "Commenting as %s...")
	message.SetString(lang, "reviews.placeholder", "Write your review...")
	message.SetString(lang, "reviews.publish", "Publish")
	message.SetString(lang, "reviews.loading", "Loading reviews...")
	message.SetString(lang, "reviews.empty", "No reviews yet. Be the first!")
	message.SetString(lang, "reviews.delete", "Delete")
	message.SetString(lang, "reviews.confirm_delete", "Are you sure you want to delete this review?")

	// Alerts
	message.SetString(lang, "alert.login_required", "You need to be logged in to review.")
	message.SetString(lang, "alert.empty_comment", "Write a comment.")
	message.SetString(lang, "alert.review_posted", "Review sent!")
	message.SetString(lang, "alert.review_failed", "Could not send your review.")
	message.SetString(lang, "alert.delete_failed", "Could not delete the review.")
	message.SetString(lang, "alert.favorite_failed", "Error, you already added this game to your favorites.")

	// Watchlist statuses
	message.SetString(lang, "status.JOGADO", "Played")
	message.SetString(lang, "status.JOGANDO", "Playing")
	message.SetString(lang, "status.ABANDONADO", "Abandoned")
	message.SetString(lang, "status.AINDA NAO JOGADO", "Not played yet")
}
