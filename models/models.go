package models

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&Player{},
		&Clan{},
		&Landmark{},
		&Observation{},
		&Capture{},
		&Quest{},
		&DailyAssignment{},
		&Progress{},
		&PromoGrant{},
		&RewardGrant{},
	}
}
