package main

import (
	"errors"
	"fmt"
)

// LevelDef is an ASCII level layout. Legend:
//
//	.  air            #  ground        B  brick          X  spent block
//	?  coin block     M  power-up block U  1-up block    I  invisible block
//	[ ] { }  pipe top-left, top-right, left, right       ^  hazard
//	c  coin           1-6  weapon crate (gun..pencil)
//	g  walker  k  shell  t  turret  b  brute  f  flyer
//	=  horizontal platform   |  vertical platform
//	S  spawn          G  goal column
type LevelDef struct {
	Name string
	Rows []string
}

// Level is a freshly loaded level instance. Spawned entities get ids from a
// per-level allocator seeded at levelIDBase, scanned row-major, so host and
// client agree on ids without exchanging them.
type Level struct {
	Index     int
	Name      string
	Grid      *TileGrid
	SpawnX    float64 // feet position
	SpawnY    float64
	GoalX     float64
	Enemies   []*Enemy
	Coins     []*Pickup
	Crates    []*Pickup
	Platforms []*Platform
}

var (
	errNoSpawn = errors.New("level has no spawn")
	errNoGoal  = errors.New("level has no goal")
)

// LevelCount is the number of built-in levels
func LevelCount() int {
	return len(levelDefs)
}

// LoadLevel builds built-in level index, wrapping past the last one
func LoadLevel(index int) (*Level, error) {
	n := len(levelDefs)
	index = ((index % n) + n) % n
	lvl, err := ParseLevel(levelDefs[index])
	if err != nil {
		return nil, fmt.Errorf("level %d: %w", index, err)
	}
	lvl.Index = index
	return lvl, nil
}

// ParseLevel builds a level from its layout. Short rows are padded with air.
func ParseLevel(def LevelDef) (*Level, error) {
	h := len(def.Rows)
	w := 0
	for _, r := range def.Rows {
		w = max(w, len(r))
	}
	if w == 0 || h == 0 {
		return nil, errors.New("empty level")
	}

	lvl := &Level{Name: def.Name, Grid: NewTileGrid(w, h), GoalX: -1, SpawnX: -1}
	ids := NewIDAllocator(levelIDBase)
	g := lvl.Grid

	for cy, row := range def.Rows {
		for cx := 0; cx < len(row); cx++ {
			ch := row[cx]
			switch ch {
			case '.', ' ':
			case '#':
				g.Set(cx, cy, TileGround)
			case 'B':
				g.Set(cx, cy, TileBrick)
			case 'X':
				g.Set(cx, cy, TileSpent)
			case '?':
				g.Set(cx, cy, TileQuestion)
				g.SetContent(cx, cy, ContentCoin)
			case 'M':
				g.Set(cx, cy, TileQuestion)
				g.SetContent(cx, cy, ContentPowerUp)
			case 'U':
				g.Set(cx, cy, TileQuestion)
				g.SetContent(cx, cy, ContentOneUp)
			case 'I':
				g.Set(cx, cy, TileInvisible)
			case '[':
				g.Set(cx, cy, TilePipeTopLeft)
			case ']':
				g.Set(cx, cy, TilePipeTopRight)
			case '{':
				g.Set(cx, cy, TilePipeLeft)
			case '}':
				g.Set(cx, cy, TilePipeRight)
			case '^':
				g.Set(cx, cy, TileHazard)
			case 'c':
				lvl.Coins = append(lvl.Coins, NewCoin(ids.Next(), cx, cy))
			case '1', '2', '3', '4', '5', '6':
				lvl.Crates = append(lvl.Crates, NewCrate(ids.Next(), cx, cy, WeaponKind(ch-'1')))
			case 'g':
				lvl.Enemies = append(lvl.Enemies, NewEnemy(ids.Next(), EnemyWalker, cx, cy))
			case 'k':
				lvl.Enemies = append(lvl.Enemies, NewEnemy(ids.Next(), EnemyShell, cx, cy))
			case 't':
				lvl.Enemies = append(lvl.Enemies, NewEnemy(ids.Next(), EnemyTurret, cx, cy))
			case 'b':
				lvl.Enemies = append(lvl.Enemies, NewEnemy(ids.Next(), EnemyBrute, cx, cy))
			case 'f':
				lvl.Enemies = append(lvl.Enemies, NewEnemy(ids.Next(), EnemyFlyer, cx, cy))
			case '=':
				lvl.Platforms = append(lvl.Platforms, NewPlatform(ids.Next(), cx, cy, false))
			case '|':
				lvl.Platforms = append(lvl.Platforms, NewPlatform(ids.Next(), cx, cy, true))
			case 'S':
				lvl.SpawnX = float64(cx) * TileSize
				lvl.SpawnY = float64(cy+1) * TileSize
			case 'G':
				lvl.GoalX = float64(cx) * TileSize
			default:
				return nil, fmt.Errorf("unknown tile %q at %d,%d", ch, cx, cy)
			}
		}
	}

	if lvl.SpawnX < 0 {
		return nil, errNoSpawn
	}
	if lvl.GoalX < 0 {
		return nil, errNoGoal
	}
	return lvl, nil
}

var levelDefs = []LevelDef{
	{
		Name: "Grasslands",
		Rows: []string{
			"..............................................................................................................",
			"..............................................................................................................",
			"..............................................................................................................",
			"..............................................................................................................",
			"..............................................................................................................",
			"................U.............................................................................................",
			"..............................................................................................................",
			"....................................................................................f.........................",
			"......................................ccc...cccc..............................................#...............",
			"..........?...B?BMB.........................BBBB....?B?......................................##...............",
			".................................[]............................BB...........................###...............",
			"........................[].......{}...................................=....................####...............",
			"..S.................g...{}...g...{}...........k...1.....b...t.....^^..........g.g.......3.#####....I....G.....",
			"######################################...#############################...#####################################",
			"######################################...#############################...#####################################",
		},
	},
	{
		Name: "Underground",
		Rows: []string{
			"#BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
			"#.......................................................................................................................",
			"#.......................................................................................................................",
			"#.......................................................................................................................",
			"#.......................................f...............................................................................",
			"#...............................................cUc.....................................................................",
			"#.......................................................................................................................",
			"#.....................cccccc............................................................................................",
			"#.....................BBBBBB............................................................................................",
			"#.......M?BB?...................................B?B.........|.............................?MB?..........................",
			"#.............................=.........................................................................................",
			"#...............................................................................[]......................................",
			"#.S.........gg....2.......k...........f.....b.......t..^^^............4...kgk...{}....b.........5...gtg.....6.....G.....",
			"##############################....##########################......######################################################",
			"##############################....##########################......######################################################",
		},
	},
	{
		Name: "Sky Bridge",
		Rows: []string{
			"....................................................................................................",
			"....................................................................................................",
			"....................................................................................................",
			"....................................................................................................",
			".......................................................f............................................",
			"..............................f.....................................................................",
			"....................................................?U?.............................ccc.............",
			"..............................................................BBB...........=.......................",
			"........?M?...........=.....t.......ccccc.........................|.....t...........................",
			"..........................####..............=.....g...................######........................",
			"..................g.......####..................######................######......kk................",
			"...............#######................kb........######......bg..................########............",
			"..S...6........#######............##########..............########..............########......g..G..",
			"############......................##########..............########..........................########",
			"############................................................................................########",
		},
	},
}
