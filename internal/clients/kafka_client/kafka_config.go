package kafka_client

type KafkaConfig struct {
	Broker string
	Topic  string
}
