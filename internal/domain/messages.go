package domain

// Fixed peer-facing chat messages. The exact wording is part of the
// bot's public behavior; tests assert against these strings.
const (
	SendInstructionsMessage = "If you want to give me something, offer it for trade then check ready and I'll check ready soon after. " +
		"Click Make Trade when you're sure you want to send me your items."

	TradeCompleteMessage = "Trade complete! Please remember to remove me from your friends list if you don't want to make any more trades so that other " +
		"people can trade with me. If you want to make trades later you can always re-add me."

	WrongLinkMessage = `It looks like you selected "Copy Page URL", you need to select "Copy Link Address"`

	ItemNotFoundMessage = "I can't find that item, you may need to refresh my inventory page or try to copy the link again."

	WelcomeMessage = "Hello! To give me your trash or get something from my inventory, invite me to trade and I'll give you instructions there. " +
		"Trade offers should also work but they don't work all the time. " +
		"Please remember to remove me from your friends list after you are done so that my friends list doesn't fill up, I will automatically remove you as a friend if you don't. " +
		"If you want to make trades later you can always re-add me."

	ChatResponseMessage = "Hello! To give me your trash or get something from my inventory, invite me to trade and I'll give you instructions there."

	PausedMessage = "Sorry, I can't trade right now. I'll set my status as Looking to Trade when I'm ready to accept requests again."

	NotReadyMessage = "Sorry, I can't accept a trade request right now, wait a few minutes and try again."

	CantAddMessage = "Sorry, I can't add that item, it might not be tradable. If it's giftable you can leave a comment on my profile and I might gift it to you when I can."

	AddedMessage = "Item added, click ready when you want to make the trade"

	TradeErrorMessage = "Something went wrong on my end there, please try that again."

	UnknownCommandMessage = "Unrecognized command"
)

// TakeInstructions names the bot's inventory page, so it depends on
// the configured profile.
func TakeInstructions(inventoryURL string) string {
	return "If you want me to send you something from my inventory, go to my inventory (" + inventoryURL + "), " +
		`right click on what you want and select "Copy Link Address", then paste that into this trade chat window and I'll add the item. ` +
		"Check ready then click Make Trade when you're happy with the offerings."
}

func BadLinkMessage(inventoryURL string) string {
	return "I don't recognise that link. " + TakeInstructions(inventoryURL)
}

// InventoryURL builds the bot's own inventory page URL, with a
// trailing slash, from the community base URL and vanity profile id.
func InventoryURL(communityURL, profileID string) string {
	return communityURL + "/id/" + profileID + "/inventory/"
}
