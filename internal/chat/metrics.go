package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var chatMessages = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fastgraph_chat_messages_total",
	Help: "Total chat messages processed end to end",
})
