package fun

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandbot/internal/command"
)

const (
	defaultFormula = "1d6"
	maxDice        = 100
	maxSides       = 1000
	// maxMagnitude bounds literals, products and the running total.
	maxMagnitude = 1_000_000_000
)

var (
	tokenRegex = regexp.MustCompile(`(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`^(\d*)d(\d+)$`)
	validOps   = map[string]bool{"+": true, "-": true, "*": true, "/": true}

	errFormula  = errors.New("can't parse your formula, try something like `2d6+1d4*2-3`")
	errTooLarge = fmt.Errorf("results are limited to ±%d", maxMagnitude)
)

type RollCommand struct {
	rng func(n int) int
}

func (c *RollCommand) Name() string               { return "roll" }
func (c *RollCommand) Description() string        { return "Roll dice like `2d20+1d6-2`" }
func (c *RollCommand) Aliases() []string          { return []string{"dice", "r"} }
func (c *RollCommand) Category() command.Category { return command.CategoryFun }
func (c *RollCommand) Cooldown() time.Duration    { return 2 * time.Second }

func (c *RollCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "formula",
				Description: "Supports `2d6+1d4*2-3` and similar math",
			},
		},
	}
}

func (c *RollCommand) Message(ctx *command.MessageContext) error {
	return ctx.Reply(c.roll(ctx.RawArgs()))
}

func (c *RollCommand) Slash(ctx *command.SlashContext) error {
	out := c.roll(ctx.StringOption("formula"))
	if strings.HasPrefix(out, "⚠️") {
		return ctx.ReplyEphemeral(out)
	}
	return ctx.Reply(out)
}

func (c *RollCommand) roll(formula string) string {
	res, err := evaluate(formula, func(n int) int { return intn(c.rng, n) })
	if err != nil {
		return "⚠️ " + capitalize(err.Error())
	}
	return fmt.Sprintf("🎲 `%s` → %s = **%d**", res.formula, res.detail, res.total)
}

type rollResult struct {
	formula string
	detail  string
	total   int
}

type term struct {
	value int
	desc  string
	sign  string
}

// evaluate computes a dice formula. Multiplication and division bind to
// the preceding term, addition and subtraction are applied left to right.
func evaluate(formula string, rng func(n int) int) (rollResult, error) {
	formula = strings.ToLower(strings.Join(strings.Fields(formula), ""))
	if formula == "" {
		formula = defaultFormula
	}
	tokens := tokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 || strings.Join(tokens, "") != formula {
		return rollResult{}, errFormula
	}

	var terms []term
	op := "+"
	expectOperand := true
	for _, tok := range tokens {
		if validOps[tok] {
			if expectOperand {
				if tok == "-" && len(terms) == 0 && op == "+" {
					op = "-"
					continue
				}
				return rollResult{}, fmt.Errorf("unexpected `%s` in formula", tok)
			}
			op, expectOperand = tok, true
			continue
		}

		val, desc, err := evaluateToken(tok, rng)
		if err != nil {
			return rollResult{}, err
		}
		switch op {
		case "*", "/":
			prev := &terms[len(terms)-1]
			if op == "/" {
				if val == 0 {
					return rollResult{}, errors.New("can't divide by zero")
				}
				prev.value /= val
			} else {
				if val != 0 && abs(prev.value) > maxMagnitude/abs(val) {
					return rollResult{}, errTooLarge
				}
				prev.value *= val
			}
			prev.desc = fmt.Sprintf("%s %s %s", prev.desc, op, desc)
		default:
			terms = append(terms, term{value: val, desc: desc, sign: op})
		}
		expectOperand = false
	}
	if expectOperand {
		return rollResult{}, errors.New("formula can't end with an operator")
	}

	res := rollResult{formula: formula}
	var sb strings.Builder
	for i, t := range terms {
		switch {
		case i == 0 && t.sign == "-":
			sb.WriteString("-")
		case i > 0:
			fmt.Fprintf(&sb, " %s ", t.sign)
		}
		sb.WriteString(t.desc)
		if t.sign == "-" {
			res.total -= t.value
		} else {
			res.total += t.value
		}
		if abs(res.total) > maxMagnitude {
			return rollResult{}, errTooLarge
		}
	}
	res.detail = sb.String()
	return res, nil
}

func evaluateToken(tok string, rng func(n int) int) (int, string, error) {
	m := diceRegex.FindStringSubmatch(tok)
	if m == nil {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, "", fmt.Errorf("`%s` is not a number", tok)
		}
		if n > maxMagnitude {
			return 0, "", errTooLarge
		}
		return n, tok, nil
	}

	count := 1
	if m[1] != "" {
		count, _ = strconv.Atoi(m[1])
	}
	sides, _ := strconv.Atoi(m[2])
	if count < 1 || count > maxDice {
		return 0, "", fmt.Errorf("roll between 1 and %d dice at once", maxDice)
	}
	if sides < 2 || sides > maxSides {
		return 0, "", fmt.Errorf("dice need between 2 and %d sides", maxSides)
	}

	rolls := make([]string, count)
	sum := 0
	for i := range rolls {
		r := rng(sides) + 1
		sum += r
		rolls[i] = strconv.Itoa(r)
	}
	return sum, fmt.Sprintf("%s[%s]", tok, strings.Join(rolls, ", ")), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func init() {
	command.Declare(func() command.Command { return &RollCommand{} })
}
