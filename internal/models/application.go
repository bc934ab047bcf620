package models

// Application is one submitted internship questionnaire.
// JSON names match the form field ids; the store persists the same shape.
type Application struct {
	ID string `json:"_id,omitempty"`

	// Личная информация
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	BirthDate   string `json:"birthDate"`
	Age         *int   `json:"age,omitempty"`
	Citizenship string `json:"citizenship"`
	Address     string `json:"address"`

	// Образование
	Institution   string   `json:"institution"`
	Specialty     string   `json:"specialty"`
	Course        *int     `json:"course,omitempty"`
	StudyForm     string   `json:"studyForm"`
	GPA           *float64 `json:"gpa,omitempty"`
	StudyInterest string   `json:"studyInterest"`

	// Информация о практике
	HowKnow              string `json:"howKnow"`
	PracticeBenefits     string `json:"practiceBenefits"`
	PreviousPractice     string `json:"previousPractice"`
	InternetResearch     string `json:"internetResearch"`
	ClientOrders         string `json:"clientOrders"`
	Teamwork             string `json:"teamwork"`
	PracticeExpectations string `json:"practiceExpectations"`
	SupplierMonitoring   string `json:"supplierMonitoring"`

	// Навыки и умения
	Skills              []string `json:"skills"`
	PracticeActivities  string   `json:"practiceActivities"`
	Hobbies             string   `json:"hobbies"`
	PracticalExperience string   `json:"practicalExperience"`
	ProfessionalTasks   string   `json:"professionalTasks"`
	SocialMedia         string   `json:"socialMedia"`
	FutureVision        string   `json:"futureVision"`
	Exhibitions         string   `json:"exhibitions"`
	AdDesign            string   `json:"adDesign"`
	PrintMaterials      string   `json:"printMaterials"`
	CreativeConcepts    string   `json:"creativeConcepts"`
	ThreeDExperience    string   `json:"threeDExperience"`
	PrintPrep           string   `json:"printPrep"`
	Multitasking        string   `json:"multitasking"`
	EmailCampaigns      string   `json:"emailCampaigns"`
	ColdCalling         string   `json:"coldCalling"`
	ContractExperience  string   `json:"contractExperience"`
	ExcelSkills         string   `json:"excelSkills"`
	PrinterSkills       string   `json:"printerSkills"`
	Souvenirs           string   `json:"souvenirs"`
	WritingExperience   string   `json:"writingExperience"`
	EditingSkills       string   `json:"editingSkills"`
	LogoDesign          string   `json:"logoDesign"`
	MagazineCovers      string   `json:"magazineCovers"`
	BusinessCards       string   `json:"businessCards"`

	// Опыт работы
	WorkExperience   string `json:"workExperience"`
	PreviousJobs     string `json:"previousJobs"`
	LikesToDo        string `json:"likesToDo"`
	InterestedInJob  string `json:"interestedInJob"`
	InternshipPeriod string `json:"internshipPeriod"`

	// Заключение
	SubmissionDate string `json:"submissionDate"`
	Signature      string `json:"signature"`
	Interviewer    string `json:"interviewer"`

	// Photo is a data URI (data:<mime>;base64,...).
	Photo       string `json:"photo,omitempty"`
	SubmittedAt string `json:"submittedAt"`
}
