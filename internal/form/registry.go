// Package form holds the intern questionnaire: the field catalog, the
// client-side form state and the checks shared by client and server.
package form

// Kind is the input kind of a field.
type Kind string

const (
	KindText     Kind = "text"
	KindTel      Kind = "tel"
	KindLongText Kind = "textarea"
	KindChoice   Kind = "select"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindSkills   Kind = "skills"
)

// Option is one selectable value of a choice or skills field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one form field.
type Field struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"type"`
	Required bool     `json:"required,omitempty"`
	ReadOnly bool     `json:"readOnly,omitempty"`
	Integer  bool     `json:"integer,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Step     *float64 `json:"step,omitempty"`
	Options  []Option `json:"options,omitempty"`
	Prompt   string   `json:"prompt,omitempty"`
	Message  string   `json:"-"` // shown when a required field is blank
}

// Section groups fields under a title.
type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

const (
	FieldFullName  = "fullName"
	FieldPhone     = "phone"
	FieldBirthDate = "birthDate"
	FieldAge       = "age"
	FieldSkills    = "skills"

	MaxAge = 150
)

func num(v float64) *float64 { return &v }

func choice(id, label, prompt string, values ...string) Field {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Value: v, Label: v})
	}
	return Field{ID: id, Label: label, Kind: KindChoice, Options: opts, Prompt: prompt}
}

func yesNo(id, label string) Field {
	return choice(id, label, "Выберите ответ", "Да", "Нет")
}

func long(id, label string) Field {
	return Field{ID: id, Label: label, Kind: KindLongText}
}

func text(id, label string) Field {
	return Field{ID: id, Label: label, Kind: KindText}
}

var sections = []Section{
	{
		Title: "Личная информация",
		Fields: []Field{
			{ID: FieldFullName, Label: "Ф.И.О.", Kind: KindText, Required: true, Message: "Ф.И.О. обязательно"},
			{ID: FieldPhone, Label: "Контактный телефон", Kind: KindTel, Required: true, Message: "Контактный телефон обязателен"},
			{ID: FieldBirthDate, Label: "Дата рождения", Kind: KindDate},
			{ID: FieldAge, Label: "Сколько Вам полных лет?", Kind: KindNumber, ReadOnly: true, Integer: true, Min: num(0), Max: num(MaxAge)},
			text("citizenship", "Гражданство"),
			text("address", "Адрес проживания, ближайшее метро"),
		},
	},
	{
		Title: "Образование",
		Fields: []Field{
			text("institution", "Наименование учебного заведения"),
			text("specialty", "Специальность"),
			{ID: "course", Label: "Курс", Kind: KindNumber, Integer: true, Min: num(1), Max: num(6)},
			choice("studyForm", "Форма обучения", "Выберите форму обучения", "Очная", "Очно-заочная", "Заочная", "Дистанционная"),
			{ID: "gpa", Label: "Средний балл", Kind: KindNumber, Min: num(0), Max: num(5), Step: num(0.1)},
			long("studyInterest", "Вам интересно учиться?"),
		},
	},
	{
		Title: "Информация о практике",
		Fields: []Field{
			long("howKnow", "Как вы узнали о нас?"),
			long("practiceBenefits", "Какие преимущества Вы видите в стажировке у нас?"),
			long("previousPractice", "Проходили ли вы практику ранее?"),
			long("internetResearch", "Вы работали с поиском информации в интернете?"),
			long("clientOrders", "Вы рассчитывали когда-нибудь заказы клиентов?"),
			choice("teamwork", "Любите ли Вы работать в команде?", "Выберите ответ", "Да", "Нет", "Иногда"),
			long("practiceExpectations", "Что Вы хотите получить от практики?"),
			yesNo("supplierMonitoring", "Проводили ли Вы мониторинг поставщиков в интернете?"),
		},
	},
	{
		Title: "Навыки и умения",
		Fields: []Field{
			{
				ID: FieldSkills, Label: "Какими программами Вы владеете:", Kind: KindSkills,
				Options: []Option{
					{Value: "PowerPoint", Label: "PowerPoint"},
					{Value: "Outlook", Label: "Outlook"},
					{Value: "Excel", Label: "Excel"},
					{Value: "Word", Label: "Word"},
					{Value: "1С", Label: "1С"},
					{Value: "Illustrator", Label: "Illustrator"},
					{Value: "Photoshop", Label: "Photoshop"},
					{Value: "Corel Draw", Label: "Corel Draw"},
				},
			},
			long("practiceActivities", "Чем бы Вы хотели заниматься на практике?"),
			long("hobbies", "Есть ли у Вас хобби?"),
			long("practicalExperience", "Каким практическим опытом Вы обладаете?"),
			long("professionalTasks", "Какие профессиональные задачи Вы способны решать наиболее компетентно?"),
			long("socialMedia", "Как Вы относитесь к социальным сетям, сколько времени проводите в них?"),
			long("futureVision", "Кем Вы себя видите через год?"),
			long("exhibitions", "Принимали ли Вы участие в выставках? В качестве кого?"),
			long("adDesign", "Вы когда-нибудь подготавливали рекламные макеты к производству?"),
			yesNo("printMaterials", "Занимались ли Вы оформлением полиграфических материалов?"),
			long("creativeConcepts", "Вы когда-нибудь занимались разработкой креативных концепций, фирменного стиля?"),
			long("threeDExperience", "Работали ли Вы с 3D пакетом?"),
			long("printPrep", "Владеете ли Вы техникой на уровне печатной подготовки и цветоделения?"),
			yesNo("multitasking", "Умеете ли Вы работать над несколькими проектами одновременно?"),
			yesNo("emailCampaigns", "Делали ли Вы email рассылки?"),
			yesNo("coldCalling", "Занимались ли Вы когда-либо обзвоном клиентов?"),
			long("contractExperience", "Есть ли у Вас опыт в оформлении договора?"),
			choice("excelSkills", "Насколько хорошо Вы работаете с Excel?", "Выберите уровень", "Базовый", "Средний", "Продвинутый", "Эксперт"),
			long("printerSkills", "Умеете ли Вы пользоваться принтером?"),
			long("souvenirs", "Вы работали когда-нибудь с сувенирной продукцией?"),
			long("writingExperience", "Есть ли у Вас опыт написания текстов?"),
			yesNo("editingSkills", "Умеете ли Вы корректировать текст?"),
			long("logoDesign", "Вы когда-нибудь создавали логотип?"),
			long("magazineCovers", "Делали ли Вы когда-либо обложки журналов?"),
			yesNo("businessCards", "Вы когда-нибудь изготавливали визитки для предприятия?"),
		},
	},
	{
		Title: "Опыт работы",
		Fields: []Field{
			yesNo("workExperience", "Работали ли Вы ранее?"),
			long("previousJobs", "Если да, то где и кем работали?"),
			long("likesToDo", "Чем Вам нравится заниматься?"),
			choice("interestedInJob", "Заинтересованы ли Вы в работе после окончания практики?", "Выберите ответ", "Да", "Нет", "Возможно"),
			text("internshipPeriod", "Укажите период стажировки"),
		},
	},
	{
		Title: "Заключение",
		Fields: []Field{
			{ID: "submissionDate", Label: "Дата", Kind: KindDate},
			text("signature", "Подпись"),
			text("interviewer", "Кто проводил собеседование"),
		},
	},
}

var byID = func() map[string]Field {
	m := make(map[string]Field)
	for _, s := range sections {
		for _, f := range s.Fields {
			m[f.ID] = f
		}
	}
	return m
}()

// Sections returns the questionnaire layout. The slice must not be modified.
func Sections() []Section {
	return sections
}

// Fields returns every field in display order.
func Fields() []Field {
	out := make([]Field, 0, len(byID))
	for _, s := range sections {
		out = append(out, s.Fields...)
	}
	return out
}

// Lookup finds a field by id.
func Lookup(id string) (Field, bool) {
	f, ok := byID[id]
	return f, ok
}

// HasOption reports whether v is one of the field's option values.
func (f Field) HasOption(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}
