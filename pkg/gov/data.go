package gov

// Service is one government service tied to a user profile.
type Service struct {
	ID         int    `json:"id"`
	NameAr     string `json:"name_ar"`
	NameEn     string `json:"name_en"`
	Status     string `json:"status"`
	ExpiryDate string `json:"expiry_date"`
	Icon       string `json:"icon"`
}

// Notification is a service alert shown to the user.
type Notification struct {
	ID        int    `json:"id"`
	TitleAr   string `json:"title_ar"`
	MessageAr string `json:"message_ar"`
	Date      string `json:"date"`
}

// User is the demo profile backing the profile and services screens.
type User struct {
	NationalID    string         `json:"national_id"`
	Name          string         `json:"name"`
	NameEn        string         `json:"name_en"`
	BirthDate     string         `json:"birth_date"`
	Nationality   string         `json:"nationality"`
	City          string         `json:"city"`
	Phone         string         `json:"phone"`
	Services      []Service      `json:"services"`
	Notifications []Notification `json:"notifications"`
}

// DemoUser returns the fixed demo profile.
func DemoUser() User {
	return User{
		NationalID:  "1234567890",
		Name:        "أحمد محمد العتيبي",
		NameEn:      "Ahmed Mohammed Al-Otaibi",
		BirthDate:   "1990-05-15",
		Nationality: "سعودي",
		City:        "الرياض",
		Phone:       "0551234567",
		Services: []Service{
			{
				ID:         1,
				NameAr:     "تجديد الهوية الوطنية",
				NameEn:     "National ID Renewal",
				Status:     "نشط",
				ExpiryDate: "2026-03-20",
				Icon:       "badge",
			},
			{
				ID:         2,
				NameAr:     "رخصة القيادة",
				NameEn:     "Driving License",
				Status:     "منتهية",
				ExpiryDate: "2024-08-10",
				Icon:       "car",
			},
			{
				ID:         3,
				NameAr:     "جواز السفر",
				NameEn:     "Passport",
				Status:     "نشط",
				ExpiryDate: "2027-12-05",
				Icon:       "passport",
			},
		},
		Notifications: []Notification{
			{
				ID:        1,
				TitleAr:   "تنبيه: موعد تجديد الرخصة",
				MessageAr: "رخصة القيادة الخاصة بك انتهت صلاحيتها",
				Date:      "2025-11-20",
			},
		},
	}
}
