package helpers

// Request/Response DTOs
type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	Password     string `json:"password" binding:"required"`
	Confirmation string `json:"confirmation" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateListingRequest only binds presence; field-level validation (title
// length, positive starting bid, URL shape, category existence) happens in
// the service so failures come back per field.
type CreateListingRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	StartingBid float64 `json:"starting_bid" binding:"required"`
	ImageURL    string  `json:"image_url" binding:"required"`
	CategoryID  string  `json:"category_id"`
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type CommentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	ListingID string  `json:"listing_id"`
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"created_at"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type WatchResponse struct {
	ListingID string `json:"listing_id"`
	Watching  bool   `json:"watching"`
}
