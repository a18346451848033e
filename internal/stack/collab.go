package stack

import "github.com/brygga/kortlek/internal/domain"

// DetailPresenter renders the expanded card's full content. The controller
// never renders anything itself; it only asks the presenter to open or tear
// down the detail surface.
type DetailPresenter interface {
	ShowDetail(domain.CardData)
	HideDetail()
}

// InfoPanel displays the top card's title and description.
type InfoPanel interface {
	SetContent(title, description string)
	Show()
	Hide()
}

// Recorder receives interaction events for persistence. Implementations own
// storage; the controller only reports that something happened.
type Recorder interface {
	Record(kind string, cardIndex int)
}
