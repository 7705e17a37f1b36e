package ui

// Host is what the engine needs from the desktop shell.
type Host interface {
	// NotifyUser shows a desktop notification.
	NotifyUser(title, message string)
	// ConfirmAction asks a yes/no question and calls onConfirm on yes.
	ConfirmAction(title, message string, onConfirm func())
	// PickDirectory lets the user choose a folder.
	PickDirectory(title string, onPicked func(path string))
}

// Actions are the tray menu callbacks.
type Actions struct {
	Fetch          func()
	Random         func()
	Dislike        func()
	ChangeLocation func()
	SetFrequency   func(index int)
	Quit           func()
}
