package notifications

const (
	TypeDocumentsUploaded = "documents_uploaded"
	TypeEmployeeAdded     = "employee_added"
	TypeHRReminder        = "hr_reminder"
)

// EventNotification is the live event name used when pushing a notification.
const EventNotification = "notification"
