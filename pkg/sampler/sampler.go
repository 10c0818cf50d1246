// Package sampler parses ACPC-style match logs into per-player
// action-decision-count tables, keyed by the same canonical infoset key
// the tree builder assigns, per spec.md §4.4/§7's observation tree.
package sampler

import (
	"bufio"
	"io"
	"strings"

	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// Table is one player's empirical action-decision counts, keyed by the
// canonical infoset key of the node the decision was made at. This is the
// exact shape response.DBRPolicy.Counts expects.
type Table map[string][tree.NumActions]int

// Reader replays STATE lines from a match log against a built tree,
// accumulating a Table per named player.
type Reader struct {
	g    *game.Game
	root *tree.Node
}

// NewReader builds a Reader over root, the tree built for g.
func NewReader(g *game.Game, root *tree.Node) *Reader {
	return &Reader{g: g, root: root}
}

// ReadLog scans r for STATE lines (SCORE lines and blanks/#-comments are
// ignored) and returns the accumulated Table for every player name seen.
func (rd *Reader) ReadLog(r io.Reader) (map[string]Table, error) {
	tables := make(map[string]Table)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || !strings.HasPrefix(line, "STATE:") {
			continue
		}

		entry, err := rd.parseStateLine(line)
		if err != nil {
			return nil, errs.Wrap(errs.IOFailure, err, "log line %d", lineNum)
		}
		if len(entry.playerNames) != rd.g.NumPlayers() {
			return nil, errs.New(errs.IOFailure, "log line %d: expected %d player names, got %d", lineNum, rd.g.NumPlayers(), len(entry.playerNames))
		}
		for _, name := range entry.playerNames {
			if _, ok := tables[name]; !ok {
				tables[name] = make(Table)
			}
		}
		rd.walk(entry, tables)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.IOFailure, err, "reading log")
	}
	return tables, nil
}

type stateEntry struct {
	holeCards   [][]cards.Card
	boardCards  []cards.Card
	actions     []int
	playerNames []string
}

// parseStateLine parses a line of the form
// STATE:handId:actionstring:holecards[/boardcards...]:values:names
// Action letters are f(old)/c(all,check)/r(aise); any bet-size digits
// trailing a raise letter are accepted and ignored (limit games never
// carry them, but a tolerant parser costs nothing).
func (rd *Reader) parseStateLine(line string) (stateEntry, error) {
	fields := strings.Split(line, ":")
	if len(fields) < 5 {
		return stateEntry{}, errs.New(errs.IOFailure, "malformed STATE line: %q", line)
	}
	actionField, cardsField, namesField := fields[2], fields[3], fields[len(fields)-1]

	actions, err := parseActions(actionField)
	if err != nil {
		return stateEntry{}, err
	}

	cardGroups := strings.Split(cardsField, "/")
	holeGroup := strings.Split(cardGroups[0], "|")
	if len(holeGroup) != rd.g.NumPlayers() {
		return stateEntry{}, errs.New(errs.IOFailure, "expected %d hole-card groups, got %d", rd.g.NumPlayers(), len(holeGroup))
	}
	holeCards := make([][]cards.Card, len(holeGroup))
	for p, tok := range holeGroup {
		cs, err := cards.ParseCards(tok, rd.g.Suits)
		if err != nil {
			return stateEntry{}, err
		}
		holeCards[p] = cs
	}

	var boardCards []cards.Card
	for _, tok := range cardGroups[1:] {
		cs, err := cards.ParseCards(tok, rd.g.Suits)
		if err != nil {
			return stateEntry{}, err
		}
		boardCards = append(boardCards, cs...)
	}

	return stateEntry{
		holeCards:   holeCards,
		boardCards:  boardCards,
		actions:     actions,
		playerNames: strings.Split(namesField, "|"),
	}, nil
}

func parseActions(field string) ([]int, error) {
	var actions []int
	for _, round := range strings.Split(field, "/") {
		i := 0
		for i < len(round) {
			c := round[i]
			i++
			switch c {
			case 'f':
				actions = append(actions, tree.ActionFold)
			case 'c':
				actions = append(actions, tree.ActionCall)
			case 'r':
				actions = append(actions, tree.ActionRaise)
				for i < len(round) && (round[i] == '.' || isDigit(round[i])) {
					i++
				}
			default:
				return nil, errs.New(errs.IOFailure, "unknown action letter %q in %q", c, field)
			}
		}
	}
	return actions, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// walk replays one hand against the shared tree, each player's pointer
// independently descending its own hole-card branch while following the
// same board cards and action sequence, incrementing the acting player's
// own node's count in its own Table — the same "one tree, many pointers"
// trick pkg/cfr and pkg/bestresponse use.
func (rd *Reader) walk(entry stateEntry, tables map[string]Table) {
	n := rd.g.NumPlayers()
	nodes := make([]*tree.Node, n)
	for i := range nodes {
		nodes[i] = rd.root
	}
	boardPos, actionPos := 0, 0

	for {
		switch nodes[0].Kind {
		case tree.TerminalKind:
			return
		case tree.HoleCardsKind:
			next := make([]*tree.Node, n)
			for p := range nodes {
				child, ok := nodes[p].CardChildren[cards.Key(entry.holeCards[p])]
				if !ok {
					return
				}
				next[p] = child
			}
			nodes = next
		case tree.BoardCardsKind:
			count := nodes[0].CardCount
			if boardPos+count > len(entry.boardCards) {
				return
			}
			combo := entry.boardCards[boardPos : boardPos+count]
			boardPos += count
			key := cards.Key(combo)
			next := make([]*tree.Node, n)
			for p := range nodes {
				child, ok := nodes[p].CardChildren[key]
				if !ok {
					return
				}
				next[p] = child
			}
			nodes = next
		default:
			if actionPos >= len(entry.actions) {
				return
			}
			actor := nodes[0].Player
			a := entry.actions[actionPos]
			actionPos++

			table := tables[entry.playerNames[actor]]
			key := nodes[actor].InfoSetKey
			counts := table[key]
			counts[a]++
			table[key] = counts

			next := make([]*tree.Node, n)
			for p := range nodes {
				child := nodes[p].ActionChildren[a]
				if child == nil {
					return
				}
				next[p] = child
			}
			nodes = next
		}
	}
}
