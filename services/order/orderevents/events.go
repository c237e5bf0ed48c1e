package orderevents

const (
	TopicName      = "order"
	reconciledName = TopicName + ".reconciled"
)

// Reconciled is published once, when the provider confirms an order as paid
type Reconciled struct {
	OrderUID           string
	SessionUID         string
	ProviderName       string
	PaymentMethod      string
	AmountInMinorUnits int64
	Currency           string
}

func (e Reconciled) GetEventTypeName() string {
	return reconciledName
}

func (e Reconciled) GetAggregateName() string {
	return e.OrderUID
}
