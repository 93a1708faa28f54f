package mcpserver

// DecklistFormatContract describes the decklist text format accepted by
// validate_decklist and produced by export_deck.
const DecklistFormatContract = `# Deckwright Decklist Format

Decklists are plain text in the Moxfield import style. An optional YAML
frontmatter block may name the commander, its color identity and the
reconciliation mode.

## Structure

` + "```" + `text
---
commander: Atraxa, Praetors' Voice   # OPTIONAL – overrides the Commander section
colors: [W, U, B, G]                 # OPTIONAL – used when the commander is not in the catalog
rc_mode: strict                      # OPTIONAL – strict | hybrid | offline
---
Commander
1 Atraxa, Praetors' Voice

Deck
1 Sol Ring
35x Island
Cultivate
` + "```" + `

## Rules

1. **One card per line.** A line is ` + "`" + `<quantity> <name>` + "`" + `, ` + "`" + `<quantity>x <name>` + "`" + ` or just ` + "`" + `<name>` + "`" + ` (quantity 1).
2. **Section headers** are ` + "`" + `Commander` + "`" + `, ` + "`" + `Deck` + "`" + `, ` + "`" + `Mainboard` + "`" + `, ` + "`" + `Sideboard` + "`" + ` or ` + "`" + `Maybeboard` + "`" + `,
   optionally followed by a count such as ` + "`" + `Deck (99)` + "`" + `. Sideboard and maybeboard cards are not validated.
3. **Comments** start with ` + "`" + `#` + "`" + ` or ` + "`" + `//` + "`" + `.
4. **Set codes** such as ` + "`" + `(C21) 263` + "`" + ` and foil markers ` + "`" + `*F*` + "`" + ` are ignored.
5. **The commander** comes from frontmatter, the first card of the Commander section,
   or the explicit ` + "`" + `commander` + "`" + ` argument, in increasing priority.
6. **A legal deck** has exactly 100 cards including the commander, no banned cards,
   no card outside the commander's color identity and no duplicate except basic lands.
7. **Names** are resolved through the alias map, so nicknames listed there are accepted.

## Example

` + "```" + `text
Commander
1 Krenko, Mob Boss

Deck
1 Sol Ring
1 Lightning Bolt
97 Mountain
` + "```" + `
`
