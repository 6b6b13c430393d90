package domain

import "time"

type Choice string

const (
	ChoiceSim       Choice = "SIM"
	ChoiceNao       Choice = "NAO"
	ChoiceAbstencao Choice = "ABSTENCAO"
	ChoiceAusente   Choice = "AUSENTE"
)

func (c Choice) Valid() bool {
	switch c {
	case ChoiceSim, ChoiceNao, ChoiceAbstencao, ChoiceAusente:
		return true
	}
	return false
}

// ParseChoice resolves a wire vote token into a Choice.
func ParseChoice(token string) (Choice, bool) {
	c := Choice(token)
	return c, c.Valid()
}

type Vereador struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
}

type Vote struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	VotacaoID  string    `json:"votacaoId"`
	VereadorID string    `json:"vereadorId"`
	Choice     Choice    `json:"vote"`
	CreatedAt  time.Time `json:"createdAt"`
	Vereador   Vereador  `json:"vereador"`
}

// Stats is the derived tally for one votacao. Percentages are integer,
// rounded half up; an empty votacao yields the zero value.
type Stats struct {
	Total      int `json:"total"`
	Sim        int `json:"sim"`
	Nao        int `json:"nao"`
	Abstencao  int `json:"abstencao"`
	Ausente    int `json:"ausente"`
	PercentSim int `json:"percentSim"`
	PercentNao int `json:"percentNao"`
}
