package models

// All lists every table model in dependency order.
func All() []interface{} {
	return []interface{}{
		&Identity{},
		&RefreshSession{},
		&Profile{},
		&Content{},
		&Favorite{},
		&Feedback{},
		&FeedbackResponse{},
		&Notification{},
	}
}
