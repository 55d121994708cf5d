package ai

const extractInstruction = `You turn voice memos into clear, concise to-do or grocery lists.

Listen to the memo and extract only actionable items. Leave out conversational
filler, greetings, and remarks that are not something to do or buy.
Return distinct items suitable for a to-do or grocery list.

When an item has a quantity, move the quantity into parentheses at the end,
written as digits: "6 eggs" becomes "Eggs (6)" and "a dozen eggs" becomes
"Eggs (12)".

If the memo contains no actionable items, return an empty list.`

const transcriptInstruction = `The user's voice memo has been transcribed below. ` + extractInstruction

const titleInstruction = `You are a list titling expert. Write a concise title, at most five words,
for the list content you are given. Reply with the title only.`
