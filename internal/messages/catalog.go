// Package messages holds every text the bot sends to players.
package messages

import (
	"fmt"
	"reflect"

	"burningtown"

	"gopkg.in/yaml.v3"
)

// Catalog is the set of message templates, loaded from yaml
type Catalog struct {
	Intro            string `yaml:"intro"`
	RegisterFirst    string `yaml:"registerFirst"`
	Registered       string `yaml:"registered"`
	Joined           string `yaml:"joined"`
	AlreadyPlaying   string `yaml:"alreadyPlaying"`
	Started          string `yaml:"started"`
	NotEnoughPlayers string `yaml:"notEnoughPlayers"`
	TooManyGames     string `yaml:"tooManyGames"`
	Stopped          string `yaml:"stopped"`
	PlayersList      string `yaml:"players"`
	YourRole         string `yaml:"yourRole"`
	MafiaTurn        string `yaml:"mafiaTurn"`
	MafiaPrompt      string `yaml:"mafiaPrompt"`
	DetectiveTurn    string `yaml:"detectiveTurn"`
	DetectivePrompt  string `yaml:"detectivePrompt"`
	InvalidTarget    string `yaml:"invalidTarget"`
	Dead             string `yaml:"dead"`
	VoteStart        string `yaml:"voteStart"`
	Voted            string `yaml:"voted"`
	Draw             string `yaml:"draw"`
	TurnTimeout      string `yaml:"turnTimeout"`
	VoteTimeout      string `yaml:"voteTimeout"`
	GameOver         string `yaml:"gameOver"`
}

// Load parses a catalog and checks that no message is missing
func Load(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse message catalog: %w", err)
	}

	v := reflect.ValueOf(c).Elem()
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).String() == "" {
			return nil, fmt.Errorf("message catalog: %s is empty", v.Type().Field(i).Tag.Get("yaml"))
		}
	}
	return c, nil
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Load(burningtown.MessagesYAML)
}

// MustDefault is like Default but panics if the embedded catalog is broken
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) RegisterFirstFor(name string) string {
	return fmt.Sprintf(c.RegisterFirst, name)
}

func (c *Catalog) RegisteredFor(name string) string {
	return fmt.Sprintf(c.Registered, name)
}

func (c *Catalog) JoinedFor(name string) string {
	return fmt.Sprintf(c.Joined, name)
}

func (c *Catalog) AlreadyPlayingFor(name string) string {
	return fmt.Sprintf(c.AlreadyPlaying, name)
}

func (c *Catalog) NotEnoughPlayersFor(min int) string {
	return fmt.Sprintf(c.NotEnoughPlayers, min)
}

// Players lists the alive players, names already joined
func (c *Catalog) Players(names string) string {
	return fmt.Sprintf(c.PlayersList, names)
}

func (c *Catalog) RoleFor(role, emoji string) string {
	return fmt.Sprintf(c.YourRole, role, emoji)
}

// DeadFor announces a death; who is usually a Player's String()
func (c *Catalog) DeadFor(who fmt.Stringer) string {
	return fmt.Sprintf(c.Dead, who)
}

func (c *Catalog) VotedFor(voter, target string) string {
	return fmt.Sprintf(c.Voted, voter, target)
}

func (c *Catalog) TurnTimeoutFor(role string) string {
	return fmt.Sprintf(c.TurnTimeout, role)
}

func (c *Catalog) GameOverFor(team string) string {
	return fmt.Sprintf(c.GameOver, team)
}
