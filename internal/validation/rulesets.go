package validation

// Rule-sets used by the account and review flows.

func RegistrationRules() RuleSet {
	return RuleSet{
		{Name: "name", Rule: Rule{
			Required:  true,
			MinLength: 2,
			Message:   "Please enter your name (at least 2 characters)",
		}},
		{Name: "email", Rule: Rule{
			Required: true,
			Email:    true,
			Message:  "Please enter a valid email address",
		}},
		{Name: "phoneNumber", Rule: Rule{
			Required: true,
			Phone:    true,
			Message:  "Please enter a valid phone number",
		}},
		{Name: "password", Rule: Rule{
			Required: true,
			Password: true,
			Message:  "Password must be at least 8 characters with uppercase, lowercase, and number",
		}},
	}
}

func LoginRules() RuleSet {
	return RuleSet{
		{Name: "email", Rule: Rule{
			Required: true,
			Email:    true,
			Message:  "Please enter a valid email address",
		}},
		{Name: "password", Rule: Rule{
			Required: true,
			Message:  "Please enter your password",
		}},
	}
}

// ProfileRules validates partial profile updates; absent fields are skipped.
func ProfileRules() RuleSet {
	return RuleSet{
		{Name: "name", Rule: Rule{
			MinLength: 2,
			MaxLength: 200,
			Message:   "Please enter your name (at least 2 characters)",
		}},
		{Name: "phoneNumber", Rule: Rule{
			Phone:   true,
			Message: "Please enter a valid phone number",
		}},
		{Name: "avatar", Rule: Rule{
			URL:     true,
			Message: "Please enter a valid URL",
		}},
	}
}

func ChangePasswordRules() RuleSet {
	return RuleSet{
		{Name: "currentPassword", Rule: Rule{
			Required: true,
			Message:  "Please enter your current password",
		}},
		{Name: "newPassword", Rule: Rule{
			Required: true,
			Password: true,
			Message:  "Password must be at least 8 characters with uppercase, lowercase, and number",
		}},
	}
}

func ReviewRules() RuleSet {
	return RuleSet{
		{Name: "rating", Rule: Rule{
			Required: true,
			Min:      Bound(1),
			Max:      Bound(5),
			Message:  "Rating must be between 1 and 5",
		}},
		{Name: "comment", Rule: Rule{
			MaxLength: 1000,
		}},
	}
}
