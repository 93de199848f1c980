package bot

import "github.com/carhaus/autoservice-bot/internal/dialog"

// navBindings are the navigation callbacks reachable from any resting state:
// the main-menu buttons and the per-request detail cards.
func (b *Bot) navBindings() []dialog.Binding {
	return []dialog.Binding{
		dialog.On(dialog.Callback("main_menu"), b.showMainMenu),
		dialog.On(dialog.Callback("new_request"), b.startNewRequest),
		dialog.On(dialog.Callback("my_requests"), b.showMyRequests),
		dialog.On(dialog.CallbackPrefix("user_request_"), b.showRequestDetails),
	}
}

// adminBindings are the triage callbacks. They are bound in resting states
// rather than gated behind a dedicated admin conversation so an admin can act
// straight from a push notification. reject_mileage_ must come before
// reject_, which is its prefix.
func (b *Bot) adminBindings() []dialog.Binding {
	return []dialog.Binding{
		dialog.On(dialog.Callback("admin_menu"), b.showAdminMenu),
		dialog.On(dialog.Callback("admin_requests_pending"), b.listAdminRequests),
		dialog.On(dialog.Callback("admin_requests_completed"), b.listAdminRequests),
		dialog.On(dialog.Callback("admin_mileage_requests"), b.listMileageRequests),
		dialog.On(dialog.CallbackPrefix("admin_view_"), b.adminViewRequest),
		dialog.On(dialog.CallbackPrefix("notification_view_"), b.adminViewRequest),
		dialog.On(dialog.CallbackPrefix("mileage_response_"), b.promptMileageAnswer),
		dialog.On(dialog.CallbackPrefix("reject_mileage_"), b.rejectMileage),
		dialog.On(dialog.CallbackPrefix("approve_"), b.adminPromptNote),
		dialog.On(dialog.CallbackPrefix("reject_"), b.adminPromptNote),
		dialog.On(dialog.CallbackPrefix("complete_"), b.adminPromptNote),
		dialog.On(dialog.CallbackPrefix("delete_"), b.adminPromptNote),
		dialog.On(dialog.CallbackPrefix("comment_"), b.adminPromptNote),
	}
}

// registerRoutes builds the full transition table.
func (b *Bot) registerRoutes(e *dialog.Engine) {
	e.Fallback(
		dialog.On(dialog.Command("cancel"), b.cancelConversation),
		dialog.On(dialog.TextExact(mainMenuLabel), b.showMainMenu),
	)

	resting := append([]dialog.Binding{
		dialog.On(dialog.Command("start"), b.handleStart),
		dialog.On(dialog.Command("menu"), b.showMainMenu),
		dialog.On(dialog.Callback("register"), b.askFirstName),
	}, append(b.navBindings(), b.adminBindings()...)...)

	// Resting states share one binding list: a user with no conversation, a
	// user parked on a menu, and an admin browsing the triage queues all
	// accept the same commands and navigation callbacks.
	e.Bind(dialog.StateIdle, resting...)
	e.Bind(dialog.StateMainMenu, resting...)
	e.Bind(dialog.StateMyRequests, resting...)
	e.Bind(dialog.StateAdminMenu, resting...)

	// Registration.
	e.Bind(dialog.StateStart,
		dialog.On(dialog.Callback("register"), b.askFirstName),
		dialog.On(dialog.Command("start"), b.handleStart),
	)
	e.Bind(dialog.StateRegisterName, dialog.On(dialog.Text(), b.saveFirstName))
	e.Bind(dialog.StateRegisterSurname, dialog.On(dialog.Text(), b.saveSurname))
	e.Bind(dialog.StateRegisterPhone, dialog.On(dialog.TextOrContact(), b.completeRegistration))

	// An admin tapping a freshly pushed notification abandons whatever form
	// step they were on.
	notification := dialog.On(dialog.CallbackPrefix("notification_view_"), b.adminViewRequest)

	// Service request form.
	e.Bind(dialog.StateFormBrand,
		dialog.On(dialog.CallbackPrefix("brand_"), b.chooseBrand),
		dialog.On(dialog.Callback("main_menu"), b.showMainMenu),
		notification,
	)
	e.Bind(dialog.StateFormYear,
		dialog.On(dialog.CallbackPrefix("year_"), b.chooseYear),
		dialog.On(dialog.Callback("new_request"), b.startNewRequest),
		notification,
	)
	e.Bind(dialog.StateFormModel,
		dialog.On(dialog.CallbackPrefix("model_"), b.chooseModel),
		dialog.On(dialog.Callback("new_request"), b.startNewRequest),
		notification,
	)
	e.Bind(dialog.StateFormModelManual, dialog.On(dialog.Text(), b.manualModel))
	e.Bind(dialog.StateFormPlate, dialog.On(dialog.Text(), b.savePlate))
	e.Bind(dialog.StateFormMileage, dialog.On(dialog.Text(), b.saveMileage))
	e.Bind(dialog.StateFormWorkType,
		dialog.On(dialog.CallbackPrefix("work_type_"), b.chooseWorkType),
		dialog.On(dialog.Callback("main_menu"), b.showMainMenu),
		notification,
	)
	e.Bind(dialog.StateFormWorkManual, dialog.On(dialog.Text(), b.manualWork))
	e.Bind(dialog.StateFormDate,
		dialog.On(dialog.CallbackPrefix("date_"), b.chooseDate),
		dialog.On(dialog.Callback("main_menu"), b.showMainMenu),
		notification,
	)
	e.Bind(dialog.StateFormPhoneChoice,
		dialog.On(dialog.Callback("use_saved_phone"), b.choosePhone),
		dialog.On(dialog.Callback("enter_new_phone"), b.choosePhone),
		notification,
	)
	e.Bind(dialog.StateFormPhone, dialog.On(dialog.Text(), b.savePhone))
	e.Bind(dialog.StateFormConfirm,
		dialog.On(dialog.Callback("confirm"), b.confirmRequest),
		dialog.On(dialog.Callback("cancel"), b.cancelForm),
		notification,
	)

	// Admin note and mileage answer capture.
	e.Bind(dialog.StateAdminNote,
		dialog.On(dialog.Command("skip"), b.adminApplyNote),
		dialog.On(dialog.CallbackPrefix("no_comment_"), b.adminApplyNoComment),
		dialog.On(dialog.CallbackPrefix("admin_view_"), b.adminViewRequest),
		dialog.On(dialog.Text(), b.adminApplyNote),
	)
	e.Bind(dialog.StateMileageAnswer,
		dialog.On(dialog.CallbackPrefix("admin_view_"), b.adminViewRequest),
		dialog.On(dialog.Text(), b.saveMileageAnswer),
	)
}
