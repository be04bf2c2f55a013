package mediation

// Reward describes the currency granted by a rewarded ad
type Reward struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

// AdListener receives lifecycle notifications for one ad transaction.
// Methods are invoked from partner SDK callback goroutines; implementations
// must be safe for concurrent use.
type AdListener interface {
	// OnImpression is called when the ad is rendered on screen
	OnImpression(requestID string)

	// OnClick is called when the user taps the ad
	OnClick(requestID string)

	// OnReward is called when a rewarded ad grants its reward.
	// Fires before dismissal.
	OnReward(requestID string, reward Reward)

	// OnDismiss is called when a fullscreen ad is closed
	OnDismiss(requestID string)
}
