package dialog

// State is a named point in the conversation state machine. StateIdle is the
// zero value: no active conversation for the user.
type State int

const (
	StateIdle State = iota
	StateStart
	StateRegisterName
	StateRegisterSurname
	StateRegisterPhone
	StateMainMenu
	StateFormBrand
	StateFormYear
	StateFormModel
	StateFormModelManual
	StateFormPlate
	StateFormMileage
	StateFormWorkType
	StateFormWorkManual
	StateFormDate
	StateFormPhoneChoice
	StateFormPhone
	StateFormConfirm
	StateMyRequests
	StateAdminMenu
	StateAdminNote
	StateMileageAnswer
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateStart:           "start",
	StateRegisterName:    "register_name",
	StateRegisterSurname: "register_surname",
	StateRegisterPhone:   "register_phone",
	StateMainMenu:        "main_menu",
	StateFormBrand:       "form_brand",
	StateFormYear:        "form_year",
	StateFormModel:       "form_model",
	StateFormModelManual: "form_model_manual",
	StateFormPlate:       "form_plate",
	StateFormMileage:     "form_mileage",
	StateFormWorkType:    "form_work_type",
	StateFormWorkManual:  "form_work_manual",
	StateFormDate:        "form_date",
	StateFormPhoneChoice: "form_phone_choice",
	StateFormPhone:       "form_phone",
	StateFormConfirm:     "form_confirm",
	StateMyRequests:      "my_requests",
	StateAdminMenu:       "admin_menu",
	StateAdminNote:       "admin_note",
	StateMileageAnswer:   "mileage_answer",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
